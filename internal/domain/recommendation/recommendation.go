package recommendation

import (
	"sort"
	"strings"
)

const (
	SourceLLM      = "llm"
	SourceFallback = "built-in fallback"

	maxSkillGaps = 5
)

type Career struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	RelevanceScore float64  `json:"relevance_score"`
	RequiredSkills []string `json:"required_skills"`
	Sector         string   `json:"sector"`
	Rank           int      `json:"rank"`
	SkillGaps      []string `json:"skill_gaps"`
}

type catalogJob struct {
	title  string
	reason string
	score  int
	sector string
	skills []string
}

var catalog = map[string][]catalogJob{
	"python": {
		{"Python Developer", "Core language for backend services and automation", 95, "Technology", []string{"Django", "REST APIs", "Git", "Testing"}},
		{"Data Scientist", "Python dominates data analysis and modelling", 90, "Data & Analytics", []string{"Pandas", "Statistics", "Machine Learning", "SQL"}},
		{"Automation Engineer", "Scripting and tooling for operations", 80, "Technology", []string{"Bash", "CI/CD", "Linux", "Git"}},
	},
	"sql": {
		{"Data Analyst", "Querying and reporting on business data", 92, "Data & Analytics", []string{"Excel", "Tableau", "Statistics", "Python"}},
		{"Database Administrator", "Operating and tuning relational databases", 88, "Technology", []string{"PostgreSQL", "Backups", "Performance Tuning", "Linux"}},
		{"BI Developer", "Building dashboards on top of warehouses", 85, "Data & Analytics", []string{"Power BI", "Data Modeling", "ETL", "Excel"}},
	},
	"javascript": {
		{"Frontend Developer", "Building interactive web interfaces", 94, "Technology", []string{"React", "HTML", "CSS", "TypeScript"}},
		{"Full Stack Developer", "JavaScript on both client and server", 90, "Technology", []string{"Node.js", "React", "SQL", "REST APIs"}},
	},
	"java": {
		{"Java Developer", "Enterprise backend systems", 93, "Technology", []string{"Spring", "SQL", "Maven", "Testing"}},
		{"Android Developer", "Native mobile applications", 82, "Technology", []string{"Kotlin", "Android SDK", "Git", "UI Design"}},
	},
	"machine learning": {
		{"Machine Learning Engineer", "Training and deploying models", 95, "Data & Analytics", []string{"Python", "TensorFlow", "Statistics", "MLOps"}},
		{"AI Researcher", "Advancing model architectures", 85, "Research", []string{"Python", "Mathematics", "PyTorch", "Paper Writing"}},
	},
	"excel": {
		{"Business Analyst", "Translating data into business decisions", 88, "Business", []string{"SQL", "Requirements Gathering", "Power BI", "Communication"}},
		{"Financial Analyst", "Modelling and forecasting", 86, "Finance", []string{"Financial Modeling", "Accounting", "SQL", "Reporting"}},
	},
	"design": {
		{"UI/UX Designer", "Designing user-centred digital products", 92, "Design", []string{"Figma", "User Research", "Prototyping", "HTML"}},
		{"Graphic Designer", "Visual communication and branding", 84, "Design", []string{"Photoshop", "Illustrator", "Typography", "Branding"}},
	},
	"cloud": {
		{"Cloud Engineer", "Provisioning and running cloud infrastructure", 93, "Technology", []string{"AWS", "Terraform", "Linux", "Networking"}},
		{"DevOps Engineer", "Automating delivery pipelines", 90, "Technology", []string{"Docker", "Kubernetes", "CI/CD", "Monitoring"}},
	},
}

func genericJobs(keyword string) []catalogJob {
	return []catalogJob{
		{keyword + " Specialist", "Direct application of " + keyword + " expertise", 75, "General", []string{"Communication", "Problem Solving", "Documentation"}},
		{keyword + " Consultant", "Advising teams that rely on " + keyword, 70, "Business", []string{"Communication", "Project Management", "Presentation"}},
		{"Technical Trainer", "Teaching " + keyword + " to others", 65, "Education", []string{"Public Speaking", "Curriculum Design", "Mentoring"}},
	}
}

// catalogKeys holds the catalog keys, longest first, so "javascript" wins
// over "java" in substring matching.
var catalogKeys = func() []string {
	keys := make([]string, 0, len(catalog))
	for k := range catalog {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// lookup matches the keyword against catalog keys: exact, then substring,
// then any shared word, then generic jobs.
func lookup(keyword string) []catalogJob {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if jobs, ok := catalog[kw]; ok {
		return jobs
	}
	for _, key := range catalogKeys {
		if strings.Contains(kw, key) || strings.Contains(key, kw) {
			return catalog[key]
		}
	}
	kwWords := strings.Fields(kw)
	for _, key := range catalogKeys {
		for _, w := range strings.Fields(key) {
			for _, kwWord := range kwWords {
				if w == kwWord {
					return catalog[key]
				}
			}
		}
	}
	return genericJobs(strings.TrimSpace(keyword))
}

// Fallback builds up to topK careers for keyword from the static catalog.
func Fallback(keyword string, contextSkills []string, topK int) []Career {
	jobs := lookup(keyword)
	if topK < len(jobs) {
		jobs = jobs[:topK]
	}
	out := make([]Career, 0, len(jobs))
	for i, j := range jobs {
		required := append([]string{strings.TrimSpace(keyword)}, j.skills...)
		out = append(out, Career{
			Title:          j.title,
			Description:    j.reason,
			RelevanceScore: float64(j.score) / 100.0,
			RequiredSkills: required,
			Sector:         j.sector,
			Rank:           i + 1,
			SkillGaps:      SkillGaps(j.skills, contextSkills),
		})
	}
	return out
}

// SkillGaps lists required skills missing from have, compared
// case-insensitively, capped at five.
func SkillGaps(required, have []string) []string {
	owned := make(map[string]struct{}, len(have))
	for _, h := range have {
		owned[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}
	gaps := make([]string, 0)
	for _, r := range required {
		if _, ok := owned[strings.ToLower(r)]; ok {
			continue
		}
		gaps = append(gaps, r)
		if len(gaps) == maxSkillGaps {
			break
		}
	}
	return gaps
}
