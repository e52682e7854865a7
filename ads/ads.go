package ads

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"marketflow/es"
	"marketflow/idgen"
	"marketflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/patrickmn/go-cache"
	"github.com/sony/sonyflake"
)

const (
	InsightsIndex  = "ad_insights"
	CreativesIndex = "ad_creatives"
)

// accountLabels maps known ad account ids to their display names.
var accountLabels = map[int]string{
	1: "Conta Principal",
	2: "Impulsionamento",
	3: "BM Anunciante",
}

func AccountLabel(id int) string {
	if label, found := accountLabels[id]; found {
		return label
	}
	return fmt.Sprintf("Conta %d", id)
}

var (
	adsIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	filterOptionsCache = cache.New(time.Minute, 10*time.Minute)

	IndexCreativeFunc  = IndexCreative
	GetCreativeFunc    = GetCreative
	RemoveCreativeFunc = RemoveCreative
	IngestInsightFunc  = IngestInsight
	QueryAdMetricsFunc = QueryAdMetrics
	FilterOptionsFunc  = FilterOptions
)

// CreativeDoc is the searchable record of a published creative, written
// when its nomenclatura is generated.
type CreativeDoc struct {
	DeliverableID types.ID `json:"deliverableId"`
	VideoID       types.ID `json:"videoId"`
	ProjectID     types.ID `json:"projectId"`

	AdNumber     int    `json:"adNumber"`
	Nomenclatura string `json:"nomenclatura"`

	Tema    string `json:"tema"`
	Estilo  string `json:"estilo"`
	Formato string `json:"formato"`
	Tempo   string `json:"tempo"`
	Tamanho string `json:"tamanho"`

	LinkAnuncio string          `json:"linkAnuncio"`
	IndexTime   types.Timestamp `json:"indexTime"`
}

// AdInsight is one day of delivery metrics for one ad.
type AdInsight struct {
	AdID         string `json:"adId" validate:"required"`
	AdName       string `json:"adName"`
	CampaignName string `json:"campaignName"`
	AdsetName    string `json:"adsetName"`
	AccountID    int    `json:"accountId"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`

	Spend         float64 `json:"spend"`
	Impressions   int     `json:"impressions"`
	LinkClicks    int     `json:"linkClicks"`
	Registrations int     `json:"registrations"`
	Deals         int     `json:"deals"`
	Revenue       float64 `json:"revenue"`
}

type MetricsQuery struct {
	DateFrom string `json:"dateFrom" form:"dateFrom" validate:"required,datetime=2006-01-02"`
	DateTo   string `json:"dateTo" form:"dateTo" validate:"required,datetime=2006-01-02"`

	AccountID    int    `json:"accountId" form:"accountId"`
	CampaignName string `json:"campaignName" form:"campaignName"`
	AdsetName    string `json:"adsetName" form:"adsetName"`
	AdNameSearch string `json:"adNameSearch" form:"adNameSearch"`
}

// AdMetrics is one ad aggregated over the queried date range, with the
// derived cost and return metrics the dashboard shows.
type AdMetrics struct {
	AdID         string `json:"adId"`
	AdName       string `json:"adName"`
	CampaignName string `json:"campaignName"`
	AdsetName    string `json:"adsetName"`
	AccountID    int    `json:"accountId"`
	AccountLabel string `json:"accountLabel"`

	Spend         float64 `json:"spend"`
	Impressions   int     `json:"impressions"`
	LinkClicks    int     `json:"linkClicks"`
	Registrations int     `json:"registrations"`
	Deals         int     `json:"deals"`
	Revenue       float64 `json:"revenue"`

	FirstDate  string `json:"firstDate"`
	LastDate   string `json:"lastDate"`
	DiasAtivos int    `json:"diasAtivos"`

	Roas float64 `json:"roas"`
	Cpl  float64 `json:"cpl"`
	Cpc  float64 `json:"cpc"`
	Cpm  float64 `json:"cpm"`
	Ctr  float64 `json:"ctr"`
}

type FilterAccount struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

type FilterOptionsResult struct {
	Accounts  []FilterAccount `json:"accounts"`
	Campaigns []string        `json:"campaigns"`
	Adsets    []string        `json:"adsets"`
	MinDate   string          `json:"minDate"`
	MaxDate   string          `json:"maxDate"`
}

func IndexCreative(doc *CreativeDoc, s *session.Session) error {
	return es.IndexFunc(CreativesIndex, doc.DeliverableID, doc, s)
}

// GetCreative loads one indexed creative by its deliverable id.
func GetCreative(deliverableId types.ID, s *session.Session) (*CreativeDoc, error) {
	source, err := es.GetDocumentFunc(CreativesIndex, deliverableId, s)
	if err != nil {
		return nil, err
	}
	doc := CreativeDoc{}
	if err := json.Unmarshal([]byte(source), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// RemoveCreative drops the indexed creative of a deliverable, so creatives
// of abandoned projects stop showing on the dashboard.
func RemoveCreative(deliverableId types.ID, s *session.Session) error {
	return es.DeleteDocumentByIdFunc(CreativesIndex, deliverableId, s)
}

func IngestInsight(doc *AdInsight, s *session.Session) error {
	return es.IndexFunc(InsightsIndex, idgen.NextID(adsIdWorker), doc, s)
}

func buildMetricsQuery(q *MetricsQuery) es.H {
	filters := []es.H{
		{"range": es.H{"date": es.H{"gte": q.DateFrom, "lte": q.DateTo}}},
	}
	if q.AccountID != 0 {
		filters = append(filters, es.H{"term": es.H{"accountId": q.AccountID}})
	}
	if q.CampaignName != "" {
		filters = append(filters, es.H{"match": es.H{"campaignName": q.CampaignName}})
	}
	if q.AdsetName != "" {
		filters = append(filters, es.H{"match": es.H{"adsetName": q.AdsetName}})
	}
	if q.AdNameSearch != "" {
		filters = append(filters, es.H{"wildcard": es.H{
			"adName.keyword": es.H{"value": "*" + q.AdNameSearch + "*"}}})
	}

	return es.H{
		"size":  10000,
		"query": es.H{"bool": es.H{"filter": filters}},
	}
}

func searchInsights(query es.H, s *session.Session) ([]AdInsight, error) {
	result, err := es.SearchFunc(InsightsIndex, query, s)
	if err != nil {
		return nil, err
	}
	insights := make([]AdInsight, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		insight := AdInsight{}
		if err := json.Unmarshal([]byte(hit.Source), &insight); err != nil {
			return nil, err
		}
		insights = append(insights, insight)
	}
	return insights, nil
}

// QueryAdMetrics aggregates the matching daily insights per ad and derives
// ROAS, CPL, CPC, CPM and CTR. Results come back by spend, highest first.
func QueryAdMetrics(q *MetricsQuery, s *session.Session) ([]AdMetrics, error) {
	insights, err := searchInsights(buildMetricsQuery(q), s)
	if err != nil {
		return nil, err
	}

	byAd := map[string]*AdMetrics{}
	activeDays := map[string]map[string]bool{}
	for _, insight := range insights {
		m, found := byAd[insight.AdID]
		if !found {
			m = &AdMetrics{AdID: insight.AdID, AdName: insight.AdName,
				CampaignName: insight.CampaignName, AdsetName: insight.AdsetName,
				AccountID: insight.AccountID, AccountLabel: AccountLabel(insight.AccountID),
				FirstDate: insight.Date, LastDate: insight.Date}
			byAd[insight.AdID] = m
			activeDays[insight.AdID] = map[string]bool{}
		}

		m.Spend += insight.Spend
		m.Impressions += insight.Impressions
		m.LinkClicks += insight.LinkClicks
		m.Registrations += insight.Registrations
		m.Deals += insight.Deals
		m.Revenue += insight.Revenue
		if insight.Date < m.FirstDate {
			m.FirstDate = insight.Date
		}
		if insight.Date > m.LastDate {
			m.LastDate = insight.Date
		}
		activeDays[insight.AdID][insight.Date] = true
	}

	metrics := make([]AdMetrics, 0, len(byAd))
	for adId, m := range byAd {
		m.DiasAtivos = len(activeDays[adId])
		if m.LinkClicks > 0 {
			m.Cpc = m.Spend / float64(m.LinkClicks)
		}
		if m.Impressions > 0 {
			m.Cpm = m.Spend / float64(m.Impressions) * 1000
			m.Ctr = float64(m.LinkClicks) / float64(m.Impressions) * 100
		}
		if m.Registrations > 0 {
			m.Cpl = m.Spend / float64(m.Registrations)
		}
		if m.Spend > 0 {
			m.Roas = m.Revenue / m.Spend
		}
		metrics = append(metrics, *m)
	}

	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].Spend != metrics[j].Spend {
			return metrics[i].Spend > metrics[j].Spend
		}
		return metrics[i].AdID < metrics[j].AdID
	})
	return metrics, nil
}

// ExtractAdPrefix normalizes the AD number token out of an ad name.
// Handles "AD 91 - ...", "AD 419 | ...", "AD598_..." and "[R$50] AD 460".
func ExtractAdPrefix(adName string) string {
	upper := strings.ToUpper(adName)
	idx := strings.Index(upper, "AD")
	for idx >= 0 {
		rest := strings.TrimLeft(upper[idx+2:], " ")
		digits := ""
		for _, r := range rest {
			if r < '0' || r > '9' {
				break
			}
			digits += string(r)
		}
		if digits != "" {
			return "AD" + digits
		}
		next := strings.Index(upper[idx+2:], "AD")
		if next < 0 {
			break
		}
		idx = idx + 2 + next
	}
	return ""
}

// FilterOptions derives the dashboard's filter vocabulary from the index.
// The result is cached for a minute; every caller shares one entry.
func FilterOptions(s *session.Session) (*FilterOptionsResult, error) {
	if cached, found := filterOptionsCache.Get("filter-options"); found {
		result := cached.(FilterOptionsResult)
		return &result, nil
	}

	insights, err := searchInsights(es.H{"size": 10000, "query": es.H{"match_all": es.H{}}}, s)
	if err != nil {
		return nil, err
	}

	accountSet := map[int]bool{}
	campaignSet := map[string]bool{}
	adsetSet := map[string]bool{}
	result := FilterOptionsResult{Accounts: []FilterAccount{}, Campaigns: []string{}, Adsets: []string{}}
	for _, insight := range insights {
		accountSet[insight.AccountID] = true
		if insight.CampaignName != "" {
			campaignSet[insight.CampaignName] = true
		}
		if insight.AdsetName != "" {
			adsetSet[insight.AdsetName] = true
		}
		if result.MinDate == "" || insight.Date < result.MinDate {
			result.MinDate = insight.Date
		}
		if insight.Date > result.MaxDate {
			result.MaxDate = insight.Date
		}
	}

	for id := range accountSet {
		result.Accounts = append(result.Accounts, FilterAccount{ID: id, Label: AccountLabel(id)})
	}
	sort.Slice(result.Accounts, func(i, j int) bool { return result.Accounts[i].ID < result.Accounts[j].ID })
	for name := range campaignSet {
		result.Campaigns = append(result.Campaigns, name)
	}
	sort.Strings(result.Campaigns)
	for name := range adsetSet {
		result.Adsets = append(result.Adsets, name)
	}
	sort.Strings(result.Adsets)

	filterOptionsCache.Set("filter-options", result, cache.DefaultExpiration)
	return &result, nil
}
