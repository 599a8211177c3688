package httpadapter

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/ae-wait-service/internal/adapter/feed"
	"github.com/couchcryptid/ae-wait-service/internal/domain"
	"github.com/couchcryptid/ae-wait-service/internal/poller"
)

// DefaultTriage is the category used for waiting-time ordering when the
// request names none.
const DefaultTriage = domain.TriageIII

const groupByCluster = "cluster"

type hospitalView struct {
	domain.HospitalWaitingTime
	DistanceLabel string `json:"distanceLabel,omitempty"`
}

type groupView struct {
	Cluster        string         `json:"cluster"`
	DisplayCluster string         `json:"displayCluster"`
	Hospitals      []hospitalView `json:"hospitals"`
}

type hospitalsResponse struct {
	SnapshotID     string                `json:"snapshotId"`
	FetchedAt      time.Time             `json:"fetchedAt"`
	UpdateTime     string                `json:"updateTime"`
	SourceStale    bool                  `json:"sourceStale"`
	HasUnknownWait bool                  `json:"hasUnknownWait"`
	RefreshError   string                `json:"refreshError,omitempty"`
	Sort           domain.SortMode       `json:"sort"`
	Triage         domain.TriageCategory `json:"triage"`
	Language       domain.Language       `json:"language"`
	Hospitals      []hospitalView        `json:"hospitals"`
	Groups         []groupView           `json:"groups,omitempty"`
}

type clusterView struct {
	Cluster     string `json:"cluster"`
	DisplayName string `json:"displayName"`
}

// hospitalQuery is the validated form of the /hospitals query string.
type hospitalQuery struct {
	sort    domain.SortMode
	triage  domain.TriageCategory
	lang    domain.Language
	user    *domain.Coordinate
	filter  domain.Filter
	grouped bool
}

func parseHospitalQuery(q url.Values) (hospitalQuery, error) {
	var hq hospitalQuery

	mode, ok := domain.ParseSortMode(q.Get("sort"))
	if !ok {
		return hq, fmt.Errorf("invalid sort %q", q.Get("sort"))
	}
	hq.sort = mode

	hq.triage = DefaultTriage
	if raw := q.Get("triage"); raw != "" {
		category, ok := domain.ParseTriageCategory(raw)
		if !ok {
			return hq, fmt.Errorf("invalid triage %q", raw)
		}
		hq.triage = category
	}

	lang, ok := domain.ParseLanguage(q.Get("lang"))
	if !ok {
		return hq, fmt.Errorf("invalid lang %q", q.Get("lang"))
	}
	hq.lang = lang

	user, err := parseUserLocation(q.Get("lat"), q.Get("lng"))
	if err != nil {
		return hq, err
	}
	hq.user = user

	switch g := q.Get("group"); g {
	case "":
	case groupByCluster:
		hq.grouped = true
	default:
		return hq, fmt.Errorf("invalid group %q", g)
	}

	hq.filter = domain.Filter{Query: q.Get("q"), Cluster: q.Get("cluster")}
	return hq, nil
}

// parseUserLocation requires lat and lng together, both finite and in range.
func parseUserLocation(latText, lngText string) (*domain.Coordinate, error) {
	if latText == "" && lngText == "" {
		return nil, nil
	}
	if latText == "" || lngText == "" {
		return nil, errors.New("lat and lng must be given together")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil || !finite(lat) || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("invalid lat %q", latText)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngText), 64)
	if err != nil || !finite(lng) || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("invalid lng %q", lngText)
	}
	return &domain.Coordinate{Lat: lat, Lng: lng}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (s *Server) handleHospitals(w http.ResponseWriter, r *http.Request) {
	hq, err := parseHospitalQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state := s.source.Current()
	if !state.HasSnapshot {
		writeError(w, http.StatusServiceUnavailable, feed.ErrFeedUnavailable.Error())
		return
	}
	snap := state.Snapshot

	records := domain.LocalizeHospitals(snap.Hospitals, hq.lang)
	records = domain.FilterHospitals(records, hq.filter)
	records = domain.WithDistances(records, hq.user)
	records = domain.SortHospitalsForLanguage(records, hq.sort, hq.triage, hq.user, hq.lang)

	resp := hospitalsResponse{
		SnapshotID:     snap.ID.String(),
		FetchedAt:      snap.FetchedAt,
		UpdateTime:     snap.UpdateTime,
		SourceStale:    state.SourceStale,
		HasUnknownWait: snap.HasUnknownWait(),
		RefreshError:   state.RefreshError,
		Sort:           hq.sort,
		Triage:         hq.triage,
		Language:       hq.lang,
		Hospitals:      toViews(records, hq.lang),
	}
	if hq.grouped {
		for _, g := range domain.GroupByCluster(records, domain.ClusterOrder, hq.lang) {
			resp.Groups = append(resp.Groups, groupView{
				Cluster:        g.Cluster,
				DisplayCluster: g.DisplayCluster,
				Hospitals:      toViews(g.Hospitals, hq.lang),
			})
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func toViews(records []domain.HospitalWaitingTime, lang domain.Language) []hospitalView {
	views := make([]hospitalView, len(records))
	for i, h := range records {
		views[i] = hospitalView{HospitalWaitingTime: h}
		if h.DistanceKm != nil {
			views[i].DistanceLabel = domain.FormatDistanceKm(*h.DistanceKm, lang)
		}
	}
	return views
}

func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	lang, ok := domain.ParseLanguage(r.URL.Query().Get("lang"))
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid lang %q", r.URL.Query().Get("lang")))
		return
	}

	state := s.source.Current()
	if !state.HasSnapshot {
		writeError(w, http.StatusServiceUnavailable, feed.ErrFeedUnavailable.Error())
		return
	}

	clusters := domain.AvailableClusters(state.Snapshot.Hospitals)
	views := make([]clusterView, len(clusters))
	for i, c := range clusters {
		views[i] = clusterView{Cluster: c, DisplayName: domain.ClusterDisplayName(c, lang)}
	}
	writeJSON(w, http.StatusOK, map[string]any{"clusters": views})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.source.Refresh(r.Context())
	switch {
	case errors.Is(err, poller.ErrRefreshInProgress):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.logger.Info("manual refresh completed", "snapshot_id", snap.ID.String())
	writeJSON(w, http.StatusAccepted, map[string]any{
		"snapshotId":    snap.ID.String(),
		"fetchedAt":     snap.FetchedAt,
		"hospitalCount": len(snap.Hospitals),
	})
}
