package analyzer

var englishStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "had": {}, "has": {},
	"have": {}, "he": {}, "her": {}, "his": {}, "if": {}, "in": {},
	"into": {}, "is": {}, "it": {}, "its": {}, "no": {}, "not": {},
	"of": {}, "on": {}, "or": {}, "she": {}, "so": {}, "such": {},
	"that": {}, "the": {}, "their": {}, "then": {}, "there": {},
	"these": {}, "they": {}, "this": {}, "to": {}, "was": {}, "we": {},
	"were": {}, "which": {}, "will": {}, "with": {}, "you": {}, "your": {},
}
