package services

import (
	"math"
	"strings"

	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
)

type TopicCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type DashboardStats struct {
	RoadmapsCreated   int          `json:"roadmapsCreated"`
	SkillsCompleted   int          `json:"skillsCompleted"`
	AverageProgress   int          `json:"averageProgress"`
	TopicDistribution []TopicCount `json:"topicDistribution"`
}

// TopicCategory buckets a roadmap query by case-insensitive substring.
type TopicCategory struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

const OtherCategory = "Other"

// DefaultTopicCategories are checked in order; the first match wins.
var DefaultTopicCategories = []TopicCategory{
	{Name: "Soft Skills", Keywords: []string{"speak", "leader"}},
	{Name: "AI/ML", Keywords: []string{"ai", "machine learning"}},
	{Name: "Data Science", Keywords: []string{"python", "data"}},
	{Name: "Web Dev & Design", Keywords: []string{"react", "web", "ui", "design"}},
}

type TopicCategorizer struct {
	categories []TopicCategory
}

func NewTopicCategorizer(categories []TopicCategory) *TopicCategorizer {
	var clean []TopicCategory
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		var kws []string
		for _, k := range c.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kws = append(kws, k)
			}
		}
		if len(kws) > 0 {
			clean = append(clean, TopicCategory{Name: name, Keywords: kws})
		}
	}
	if len(clean) == 0 {
		clean = DefaultTopicCategories
	}
	return &TopicCategorizer{categories: clean}
}

func (c *TopicCategorizer) Categorize(query string) string {
	q := strings.ToLower(query)
	for _, cat := range c.categories {
		for _, k := range cat.Keywords {
			if strings.Contains(q, k) {
				return cat.Name
			}
		}
	}
	return OtherCategory
}

// order lists category names as configured, then Other.
func (c *TopicCategorizer) order() []string {
	out := make([]string, 0, len(c.categories)+1)
	for _, cat := range c.categories {
		out = append(out, cat.Name)
	}
	return append(out, OtherCategory)
}

// ComputeDashboardStats averages per-roadmap completion. A roadmap with no
// trackable topics counts as 0%. Distribution entries are non-zero and in
// category order.
func ComputeDashboardStats(list []*roadmap.StoredRoadmap, categorizer *TopicCategorizer) *DashboardStats {
	if categorizer == nil {
		categorizer = NewTopicCategorizer(nil)
	}
	out := &DashboardStats{TopicDistribution: []TopicCount{}}
	counts := map[string]int{}
	var progressSum float64
	for _, r := range list {
		if r == nil {
			continue
		}
		out.RoadmapsCreated++
		p := r.Progress()
		out.SkillsCompleted += p.Completed
		progressSum += p.Percent()
		counts[categorizer.Categorize(r.Query)]++
	}
	if out.RoadmapsCreated == 0 {
		return out
	}
	out.AverageProgress = int(math.Round(progressSum / float64(out.RoadmapsCreated)))
	for _, name := range categorizer.order() {
		if n := counts[name]; n > 0 {
			out.TopicDistribution = append(out.TopicDistribution, TopicCount{Name: name, Value: n})
		}
	}
	return out
}
