package retrieval

// DefaultVocabulary is the school-guide vocabulary used to nudge scores
// toward on-topic chunks. Callers indexing a different document should
// supply their own list.
var DefaultVocabulary = []string{
	"admission",
	"admissions",
	"application",
	"enrollment",
	"tuition",
	"fees",
	"scholarship",
	"curriculum",
	"program",
	"course",
	"schedule",
	"campus",
	"registration",
	"exam",
	"grade",
	"teacher",
	"student",
	"semester",
	"uniform",
	"transport",
}
