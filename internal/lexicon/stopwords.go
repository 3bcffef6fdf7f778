package lexicon

import (
	_ "embed"
	"strings"
)

// EnglishStopwords names the bundled NLTK English stop-word list.
const EnglishStopwords = "english"

//go:embed stopwords_english.txt
var englishStopwords []byte

// LoadStopwords returns the words of a stop-word list. An empty list gives
// no words, "english" gives the bundled list and anything else is read as a
// wordlist file.
func LoadStopwords(list string) ([]string, error) {
	switch list = strings.TrimSpace(list); list {
	case "":
		return nil, nil
	case EnglishStopwords:
		return parseWordlist(englishStopwords), nil
	}
	return readWordlist(list)
}
