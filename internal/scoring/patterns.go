package scoring

import "regexp"

// Heuristic phrase patterns, matched against lowercased text. These are
// isolated here because the lists get tuned as the rhetoric shifts; the
// weights live in scoring.go and are contractual.

var sensationalPhrases = compile([]string{
	`they don't want you to know`,
	`msm won't (report|cover|tell)`,
	`share before (deleted|removed|banned)`,
	`doctors hate (this|him|her)`,
	`one weird trick`,
	`you won't believe`,
	`shocking truth`,
	`wake up (people|sheeple|sheep)`,
	`do your own research`,
	`the truth they're hiding`,
	`mainstream media (won't|refuses|ignores)`,
	`big pharma doesn't want`,
	`follow the money`,
	`open your eyes`,
})

var vagueSourcePhrases = compile([]string{
	`someone said`,
	`people are saying`,
	`i heard that`,
	`word on the street`,
	`sources say`,
	`according to (sources|insiders)`,
	`trust me`,
})

var conspiracyMarkers = compile([]string{
	`false flag`,
	`crisis actor`,
	`paid (shill|actor)s?`,
	`deep state`,
	`new world order`,
	`agenda \d+`,
	`they're trying to`,
	`wake up`,
})

var urgencyPhrases = compile([]string{
	`act now`,
	`time is running out`,
	`before it's too late`,
	`hurry`,
	`limited time`,
})

var emotionWords = compile([]string{
	`horrifying`,
	`terrifying`,
	`outrageous`,
	`disgusting`,
	`unbelievable`,
	`shocking`,
})

func compile(patterns []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return res
}
