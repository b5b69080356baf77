package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ledgerline/statements/pkg/money"
)

// Maybank dual-language statement markers. The document must contain one of
// the header phrases (English or Malay) before any scanning happens.
var maybankHeaderPhrases = []string{
	"STATEMENT OF CREDIT CARD ACCOUNT",
	"PENYATA AKAUN KAD KREDIT",
}

var monthAbbrevs = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

var (
	stmtDateAnchorRe = regexp.MustCompile(`(?i)Statement Date|Tarikh Penyata`)
	stmtDateTokenRe  = regexp.MustCompile(`(\d{2})\s+([A-Z]{3})\s+(\d{2})`)
	cardHeaderRe     = regexp.MustCompile(`(?i)VISA IKHWAN\s+(?:PLATINUM|GOLD).+?:\s+(?:\d{4}\s+){3}(\d{4})`)
	txnRowRe         = regexp.MustCompile(`(?i)^(\d{2}/\d{2})\s+(\d{2}/\d{2})\s+(.+?)\s+([0-9,.]+)(CR)?$`)
	totalsRe         = regexp.MustCompile(`(?i)TOTAL CREDIT THIS MONTH|TOTAL DEBIT THIS MONTH|SUB TOTAL|JUMLAH`)
)

// statementDateLookahead bounds how far below the anchor phrase the
// statement date token is searched for.
const statementDateLookahead = 3

// MaybankParser extracts per-card transaction tables from Maybank credit
// card statements.
type MaybankParser struct {
	keywords *KeywordMapper
}

// NewMaybankParser creates a parser with the given keyword table.
func NewMaybankParser(keywords *KeywordMapper) *MaybankParser {
	return &MaybankParser{keywords: keywords}
}

// Parse extracts transaction rows from raw PDF bytes.
func (p *MaybankParser) Parse(data []byte) Outcome {
	lines, err := extractLines(data)
	if err != nil {
		return internalError(fmt.Errorf("maybank: %w", err))
	}
	return p.ParseLines(lines)
}

// ParseLines runs the statement scanner over a pre-extracted line sequence.
func (p *MaybankParser) ParseLines(lines []string) Outcome {
	if !containsHeaderPhrase(lines) {
		return notThisFormat()
	}

	stmtYear, stmtMonth, ok := locateStatementDate(lines)
	if !ok {
		// No statement date anywhere: treat as not this format.
		return notThisFormat()
	}

	var rows []Row
	currentCard := "" // empty = SEARCHING, set = IN_SECTION

	for _, line := range lines {
		if m := cardHeaderRe.FindStringSubmatch(line); m != nil {
			currentCard = m[1]
			continue
		}
		if totalsRe.MatchString(line) {
			currentCard = ""
			continue
		}
		if currentCard == "" {
			continue
		}

		m := txnRowRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		postDate := inferDate(m[1], stmtYear, stmtMonth)
		txnDate := inferDate(m[2], stmtYear, stmtMonth)
		cleaned, raw := normalizeDescription(m[3])

		amountMinor, err := money.ParseStatementAmount(m[4], m[5] != "")
		if err != nil {
			// Row without a resolvable amount is dropped.
			continue
		}

		row := Row{
			Source:          SourceMaybank,
			StatementMonth:  fmt.Sprintf("%04d-%02d", stmtYear, stmtMonth),
			CardLast4:       currentCard,
			PostingDate:     postDate,
			TransactionDate: txnDate,
			Description:     cleaned,
			DescriptionRaw:  raw,
			AmountMinor:     amountMinor,
			Raw:             []string{line},
		}

		if entry, found := p.keywords.Lookup(cleaned); found {
			row.Category = entry.Category
			row.Subcategory = entry.Subcategory
		}

		rows = append(rows, row)
	}

	return matched(rows)
}

func containsHeaderPhrase(lines []string) bool {
	all := strings.ToUpper(strings.Join(lines, "\n"))
	for _, phrase := range maybankHeaderPhrases {
		if strings.Contains(all, phrase) {
			return true
		}
	}
	return false
}

// locateStatementDate finds the statement year/month anchor. It looks for a
// DD MMM YY token within a few lines below the "Statement Date" phrase,
// falling back to the first such token anywhere in the document.
func locateStatementDate(lines []string) (year int, month int, ok bool) {
	for i, line := range lines {
		if !stmtDateAnchorRe.MatchString(line) {
			continue
		}
		for j := 0; j <= statementDateLookahead && i+j < len(lines); j++ {
			if y, m, found := parseStatementDateToken(lines[i+j]); found {
				return y, m, true
			}
		}
	}

	for _, line := range lines {
		if y, m, found := parseStatementDateToken(line); found {
			return y, m, true
		}
	}

	return 0, 0, false
}

func parseStatementDateToken(line string) (year int, month int, ok bool) {
	m := stmtDateTokenRe.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, false
	}
	mon, known := monthAbbrevs[strings.ToUpper(m[2])]
	if !known {
		return 0, 0, false
	}

	yy := int(m[3][0]-'0')*10 + int(m[3][1]-'0')
	if yy < 70 {
		year = 2000 + yy
	} else {
		year = 1900 + yy
	}
	return year, int(mon), true
}
