package app

import (
	"time"

	"flex_reviews/internal/domain"
)

const DefaultPageSize = 8

// Filter applies the predicate pipeline to reviews and returns the matches
// joined with their overlay fields, in input order. It reads the overlay but
// never writes to it.
func Filter(reviews []domain.Review, ov domain.OverlayReader, f domain.FilterConfig, now time.Time) []domain.ReviewView {
	f = f.Normalized()
	out := make([]domain.ReviewView, 0, len(reviews))
	for _, r := range reviews {
		if f.Source != domain.All && string(r.Source) != f.Source {
			continue
		}
		e := ov.Entry(r.ID)
		v := domain.ReviewView{Review: r, ApprovedForWeb: e.Approved, Status: e.Status, Note: e.Note}
		if matches(v, f, now) {
			out = append(out, v)
		}
	}
	return out
}

func matches(v domain.ReviewView, f domain.FilterConfig, now time.Time) bool {
	if f.ListingID != domain.All && v.ListingID != f.ListingID {
		return false
	}
	if f.Channel != domain.All && v.Channel != f.Channel {
		return false
	}
	if f.Type != domain.All && string(v.Type) != f.Type {
		return false
	}
	if f.MinRating != nil && v.Rating() < *f.MinRating {
		return false
	}
	if f.OnlyApproved && !v.ApprovedForWeb {
		return false
	}
	if f.Sentiment != domain.All && string(v.Sentiment()) != f.Sentiment {
		return false
	}
	if f.Topic != domain.All && !v.HasTopic(f.Topic) {
		return false
	}
	if f.TimeRange != domain.TimeAll {
		t, ok := v.SubmittedTime()
		if !ok {
			return false
		}
		// unknown ranges have no window and only require a parsable date
		if days := f.TimeRange.Days(); days > 0 && now.Sub(t).Hours()/24 > days {
			return false
		}
	}
	return true
}

// Paginate windows an already filtered slice. page is 1-based and clamped to
// [1, totalPages]; totalPages is at least 1 even for an empty set.
func Paginate(all []domain.ReviewView, page, pageSize int) domain.ReviewPage {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(all)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	items := make([]domain.ReviewView, 0, end-start)
	if start < end {
		items = append(items, all[start:end]...)
	}
	return domain.ReviewPage{
		Items:      items,
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		PageSize:   pageSize,
	}
}

func FilterAndPaginate(reviews []domain.Review, ov domain.OverlayReader, f domain.FilterConfig, page, pageSize int, now time.Time) domain.ReviewPage {
	return Paginate(Filter(reviews, ov, f, now), page, pageSize)
}
