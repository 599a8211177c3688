package domain

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// OtherCluster is assigned to hospitals missing from the directory.
const OtherCluster = "Other"

// ClusterOrder is the display order of the Hospital Authority clusters.
var ClusterOrder = []string{
	"Hong Kong East",
	"Hong Kong West",
	"Kowloon Central",
	"Kowloon East",
	"Kowloon West",
	"New Territories East",
	"New Territories West",
}

var clusterNamesZhHK = map[string]string{
	"Hong Kong East":       "港島東聯網",
	"Hong Kong West":       "港島西聯網",
	"Kowloon Central":      "九龍中聯網",
	"Kowloon East":         "九龍東聯網",
	"Kowloon West":         "九龍西聯網",
	"New Territories East": "新界東聯網",
	"New Territories West": "新界西聯網",
	OtherCluster:           "其他",
}

// ClusterDisplayName returns the cluster label in lang, falling back to the
// English name.
func ClusterDisplayName(cluster string, lang Language) string {
	if lang == LanguageZhHK {
		if name, ok := clusterNamesZhHK[cluster]; ok {
			return name
		}
	}
	return cluster
}

// Filter narrows a record list by name substring and exact cluster.
// Empty fields match everything.
type Filter struct {
	Query   string
	Cluster string
}

// FilterHospitals returns the records matching f, in input order.
func FilterHospitals(records []HospitalWaitingTime, f Filter) []HospitalWaitingTime {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]HospitalWaitingTime, 0, len(records))
	for _, h := range records {
		if !strings.Contains(strings.ToLower(h.HospitalName), query) {
			continue
		}
		if f.Cluster != "" && h.Details.Cluster != f.Cluster {
			continue
		}
		out = append(out, h)
	}
	return out
}

// AvailableClusters lists the non-blank clusters present in records: known
// clusters in ClusterOrder first, then the rest in collated order.
func AvailableClusters(records []HospitalWaitingTime) []string {
	present := make(map[string]struct{})
	for _, h := range records {
		if strings.TrimSpace(h.Details.Cluster) != "" {
			present[h.Details.Cluster] = struct{}{}
		}
	}

	out := make([]string, 0, len(present))
	for _, c := range ClusterOrder {
		if _, ok := present[c]; ok {
			out = append(out, c)
			delete(present, c)
		}
	}

	rest := make([]string, 0, len(present))
	for c := range present {
		rest = append(rest, c)
	}
	collator := collate.New(language.English)
	slices.SortFunc(rest, collator.CompareString)

	return append(out, rest...)
}

// ClusterGroup is one cluster's slice of an ordered record list.
type ClusterGroup struct {
	Cluster        string                `json:"cluster"`
	DisplayCluster string                `json:"displayCluster"`
	Hospitals      []HospitalWaitingTime `json:"hospitals"`
}

// GroupByCluster buckets already-sorted records by cluster, keeping the
// record order inside each group. Groups follow order, then any cluster
// not listed in order by first appearance. Empty groups are omitted.
func GroupByCluster(records []HospitalWaitingTime, order []string, lang Language) []ClusterGroup {
	byCluster := make(map[string][]HospitalWaitingTime)
	var seen []string
	for _, h := range records {
		c := h.Details.Cluster
		if _, ok := byCluster[c]; !ok {
			seen = append(seen, c)
		}
		byCluster[c] = append(byCluster[c], h)
	}

	clusters := make([]string, 0, len(order)+len(seen))
	for _, c := range append(slices.Clone(order), seen...) {
		if !slices.Contains(clusters, c) {
			clusters = append(clusters, c)
		}
	}

	groups := make([]ClusterGroup, 0, len(clusters))
	for _, c := range clusters {
		hospitals := byCluster[c]
		if len(hospitals) == 0 {
			continue
		}
		groups = append(groups, ClusterGroup{
			Cluster:        c,
			DisplayCluster: ClusterDisplayName(c, lang),
			Hospitals:      hospitals,
		})
	}
	return groups
}
