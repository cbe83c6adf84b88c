package extraction

import "regexp"

// Entity taggers shared by the text-based adapters.
var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`(?:\+?\d{1,3}[\s.\-]?)?(?:\(\d{2,4}\)[\s.\-]?)?\d{3,4}[\s.\-]?\d{3,4}(?:[\s.\-]?\d{2,4})?`)
	urlRe   = regexp.MustCompile(`(?:https?://|www\.)[^\s)>,]+|(?:github\.com|linkedin\.com|gitlab\.com)/[^\s)>,]+`)

	// dateRangeRe catches "Jan 2020 - Mar 2023", "2019 – Present",
	// "01/2020 - 12/2021", "2020-03 — now" and similar.
	dateRangeRe = regexp.MustCompile(`(?i)((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)[a-z]*\.?\s+\d{4}|\d{1,2}/\d{4}|\d{4}-\d{2}|\d{4})\s*(?:-|–|—|to)\s*((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)[a-z]*\.?\s+\d{4}|\d{1,2}/\d{4}|\d{4}-\d{2}|\d{4}|present|current|now|ongoing)`)

	yearRe = regexp.MustCompile(`(19|20)\d{2}`)
)

// knownSkills is the dictionary the rule-based fallback matches against raw
// text. Deliberately conservative: only unambiguous technology terms.
var knownSkills = map[string]string{
	"go": "languages", "golang": "languages", "python": "languages",
	"java": "languages", "javascript": "languages", "typescript": "languages",
	"rust": "languages", "ruby": "languages", "kotlin": "languages",
	"swift": "languages", "scala": "languages", "c++": "languages",
	"c#": "languages", "php": "languages", "sql": "languages",

	"react": "frameworks", "angular": "frameworks", "vue": "frameworks",
	"django": "frameworks", "flask": "frameworks", "spring": "frameworks",
	"rails": "frameworks", "node.js": "frameworks", "fastapi": "frameworks",
	"gin": "frameworks", "fiber": "frameworks",

	"postgresql": "databases", "postgres": "databases", "mysql": "databases",
	"mongodb": "databases", "redis": "databases", "elasticsearch": "databases",
	"cassandra": "databases", "sqlite": "databases", "qdrant": "databases",

	"aws": "cloud", "azure": "cloud", "kubernetes": "cloud", "docker": "cloud",
	"terraform": "cloud", "gcp": "cloud", "helm": "cloud", "ansible": "cloud",

	"kafka": "tools", "rabbitmq": "tools", "grpc": "tools", "graphql": "tools",
	"git": "tools", "jenkins": "tools", "grafana": "tools", "prometheus": "tools",
}
