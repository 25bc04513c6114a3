package client

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"jobtag/internal/domain/application"
)

// StatusGroup - вкладка фильтра на дашборде.
type StatusGroup string

const (
	GroupAll        StatusGroup = "all"
	GroupPending    StatusGroup = "pending"
	GroupInProgress StatusGroup = "inProgress"
	GroupOffers     StatusGroup = "offers"
	GroupRejected   StatusGroup = "rejected"
)

var StatusGroups = []StatusGroup{GroupAll, GroupPending, GroupInProgress, GroupOffers, GroupRejected}

// ParseStatusGroup also accepts the dashboard URL values
// (applied, interview, offer) and kebab or lower-case spellings.
func ParseStatusGroup(raw string) (StatusGroup, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all":
		return GroupAll, nil
	case "pending", "applied":
		return GroupPending, nil
	case "inprogress", "in-progress", "in_progress", "interview":
		return GroupInProgress, nil
	case "offers", "offer":
		return GroupOffers, nil
	case "rejected":
		return GroupRejected, nil
	}
	return "", fmt.Errorf("unknown status group %q", raw)
}

func (g StatusGroup) Matches(s application.Status) bool {
	switch g {
	case GroupAll:
		return true
	case GroupPending:
		return s == application.StatusApplied
	case GroupInProgress:
		return s.InProgress()
	case GroupOffers:
		return s == application.StatusOffer
	case GroupRejected:
		return s == application.StatusRejected
	}
	return false
}

// Filter returns the records of the group in their input order.
func Filter(records []application.Application, group StatusGroup) []application.Application {
	out := make([]application.Application, 0, len(records))
	for _, r := range records {
		if group.Matches(r.Status) {
			out = append(out, r)
		}
	}
	return out
}

// Counts - значения бейджей на вкладках.
type Counts struct {
	All        int `json:"all"`
	Applied    int `json:"applied"`
	InProgress int `json:"inProgress"`
	Offers     int `json:"offers"`
	Rejected   int `json:"rejected"`
}

func CountByGroup(records []application.Application) Counts {
	var c Counts
	for _, r := range records {
		if GroupAll.Matches(r.Status) {
			c.All++
		}
		if GroupPending.Matches(r.Status) {
			c.Applied++
		}
		if GroupInProgress.Matches(r.Status) {
			c.InProgress++
		}
		if GroupOffers.Matches(r.Status) {
			c.Offers++
		}
		if GroupRejected.Matches(r.Status) {
			c.Rejected++
		}
	}
	return c
}

func (c Counts) For(g StatusGroup) int {
	switch g {
	case GroupAll:
		return c.All
	case GroupPending:
		return c.Applied
	case GroupInProgress:
		return c.InProgress
	case GroupOffers:
		return c.Offers
	case GroupRejected:
		return c.Rejected
	}
	return 0
}

type SortField string

const (
	SortCompany   SortField = "company"
	SortPosition  SortField = "position"
	SortStatus    SortField = "status"
	SortUpdatedAt SortField = "updatedAt"
	SortCreatedAt SortField = "createdAt"
)

type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// SortSpec с пустым Field оставляет порядок хранилища.
type SortSpec struct {
	Field     SortField
	Direction SortDirection
}

// ParseSortSpec reads "field" or "field:direction"; direction defaults to desc.
func ParseSortSpec(raw string) (SortSpec, error) {
	if strings.TrimSpace(raw) == "" {
		return SortSpec{}, nil
	}
	field, dir, _ := strings.Cut(raw, ":")

	spec := SortSpec{Direction: Desc}
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "company":
		spec.Field = SortCompany
	case "position":
		spec.Field = SortPosition
	case "status":
		spec.Field = SortStatus
	case "updatedat", "updated_at", "updated":
		spec.Field = SortUpdatedAt
	case "createdat", "created_at", "created":
		spec.Field = SortCreatedAt
	default:
		return SortSpec{}, fmt.Errorf("unknown sort field %q", field)
	}

	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "desc":
	case "asc":
		spec.Direction = Asc
	default:
		return SortSpec{}, fmt.Errorf("unknown sort direction %q", dir)
	}
	return spec, nil
}

// Sort returns a stably sorted copy. Records missing the sort value go last
// in both directions.
func Sort(records []application.Application, spec SortSpec) []application.Application {
	out := make([]application.Application, len(records))
	copy(out, records)
	if spec.Field == "" {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		am, bm := missing(a, spec.Field), missing(b, spec.Field)
		if am || bm {
			return !am && bm
		}
		c := compare(a, b, spec.Field)
		if spec.Direction == Desc {
			c = -c
		}
		return c < 0
	})
	return out
}

func missing(a application.Application, f SortField) bool {
	switch f {
	case SortCompany:
		return strings.TrimSpace(a.Company) == ""
	case SortPosition:
		return strings.TrimSpace(a.Position) == ""
	case SortStatus:
		return a.Status == ""
	case SortUpdatedAt:
		return a.UpdatedAt.IsZero()
	case SortCreatedAt:
		return a.CreatedAt.IsZero()
	}
	return false
}

func compare(a, b application.Application, f SortField) int {
	switch f {
	case SortCompany:
		return strings.Compare(strings.ToLower(a.Company), strings.ToLower(b.Company))
	case SortPosition:
		return strings.Compare(strings.ToLower(a.Position), strings.ToLower(b.Position))
	case SortStatus:
		return a.Status.Rank() - b.Status.Rank()
	case SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	return 0
}

// Project is what the dashboard renders for a tab.
func Project(records []application.Application, group StatusGroup, spec SortSpec) []application.Application {
	return Sort(Filter(records, group), spec)
}

// Query - дополнительные фильтры списка (поиск, архив, даты).
type Query struct {
	Search   string
	Archived *bool
	From     *time.Time
	To       *time.Time
}

func (q Query) Apply(records []application.Application) []application.Application {
	f := application.ListFilter{Search: q.Search, Archived: q.Archived, From: q.From, To: q.To}
	out := make([]application.Application, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
