package parser

import (
	"strings"
	"unicode"
)

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		a an and are as at be been but by can could did do does for from had has have he her his
		i if in into is it its just may me might more most must my no not of on or our ours she
		should so some such than that the their them then there these they this those to too
		under up us was we were what when where which while who whom why will with would you
		your yours about above after again all also any because before being below between both
		during each few further here how nor only other own same very across within without per
		etc via including include includes required requirements preferred plus strong ability
		experience years year work working responsibilities responsible role candidate team
	`) {
		stopwords[w] = struct{}{}
	}
}

func isStopword(word string) bool {
	_, ok := stopwords[strings.ToLower(word)]
	return ok
}

// cleanToken strips surrounding punctuation and symbols, keeping inner ones
// such as the dot in "node.js" or the plus signs in "c++".
func cleanToken(token string) string {
	token = strings.TrimLeftFunc(token, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	return strings.TrimRightFunc(token, func(r rune) bool {
		return r != '+' && r != '#' && (unicode.IsPunct(r) || unicode.IsSymbol(r))
	})
}

func isNumeric(token string) bool {
	for _, r := range token {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return false
		}
	}
	return token != ""
}
