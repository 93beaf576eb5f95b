package report

import (
	"context"
	"sort"
	"time"

	"campusintern/internal/domain/application"
)

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

type Counts struct {
	StudentCount     int64 `json:"studentCount"`
	CompanyCount     int64 `json:"companyCount"`
	AdminCount       int64 `json:"adminCount"`
	InternshipCount  int64 `json:"internshipCount"`
	ApplicationCount int64 `json:"applicationCount"`
}

// CompanyOffer is the number of Selected applications for one company.
type CompanyOffer struct {
	CompanyName string `json:"companyName"`
	Count       int64  `json:"count"`
}

// MonthBucket is a raw aggregate keyed by month number 1..12.
type MonthBucket struct {
	Month int
	Count int64
}

type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

type StudentStats struct {
	TotalApplications int `json:"totalApplications"`
	OffersReceived    int `json:"offersReceived"`
	PendingInterviews int `json:"pendingInterviews"`
	ProfileCompletion int `json:"profileCompletion"`
}

type Repository interface {
	Counts(ctx context.Context) (Counts, error)
	SelectedByCompany(ctx context.Context) ([]CompanyOffer, error)
	ApplicationsByMonth(ctx context.Context) ([]MonthBucket, error)
}

// RankOffers returns a sorted copy: count descending, then name ascending.
func RankOffers(offers []CompanyOffer) []CompanyOffer {
	out := make([]CompanyOffer, 0, len(offers))
	for _, offer := range offers {
		if offer.Count > 0 {
			out = append(out, offer)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].CompanyName < out[j].CompanyName
	})
	return out
}

// MonthlyTrend merges buckets by month, drops empty or out-of-range months and
// labels the rest in calendar order. Months without data are omitted.
func MonthlyTrend(buckets []MonthBucket) []MonthCount {
	var totals [13]int64
	for _, bucket := range buckets {
		if bucket.Month < 1 || bucket.Month > 12 {
			continue
		}
		totals[bucket.Month] += bucket.Count
	}
	out := make([]MonthCount, 0, len(buckets))
	for month := 1; month <= 12; month++ {
		if totals[month] == 0 {
			continue
		}
		out = append(out, MonthCount{Month: monthLabels[month-1], Count: totals[month]})
	}
	return out
}

// BucketsFromTimes groups creation times by calendar month.
func BucketsFromTimes(times []time.Time) []MonthBucket {
	counts := make(map[int]int64)
	for _, ts := range times {
		counts[int(ts.Month())]++
	}
	buckets := make([]MonthBucket, 0, len(counts))
	for month, count := range counts {
		buckets = append(buckets, MonthBucket{Month: month, Count: count})
	}
	return buckets
}

func BuildStudentStats(statuses []application.Status, profileCompletion int) StudentStats {
	stats := StudentStats{TotalApplications: len(statuses), ProfileCompletion: profileCompletion}
	for _, status := range statuses {
		switch application.Normalize(status) {
		case application.StatusSelected:
			stats.OffersReceived++
		case application.StatusShortlisted:
			stats.PendingInterviews++
		}
	}
	return stats
}
