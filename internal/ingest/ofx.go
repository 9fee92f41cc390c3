package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

var payeePrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericDescriptions = map[string]struct{}{
	"DEBIT":           {},
	"CREDIT":          {},
	"PURCHASE":        {},
	"PAYMENT":         {},
	"POS TRANSACTION": {},
	"CARD PURCHASE":   {},
}

// OFXParser reads OFX/QFX statements. Every statement transaction becomes a
// line item whose transaction id is "<account>:<posting date>" and whose item
// is the payee, so a basket holds the payees one account paid on one day.
type OFXParser struct {
	logger *slog.Logger
}

// NewOFXParser creates an OFX parser.
func NewOFXParser(logger *slog.Logger) *OFXParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &OFXParser{logger: logger}
}

// statementLine is one transaction pulled out of a bank or card statement.
type statementLine struct {
	tx      ofxgo.Transaction
	account string
}

// Parse reads one OFX document. source is recorded on every line item.
func (p *OFXParser) Parse(ctx context.Context, reader io.Reader, source string) (*Result, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	lines, bankStmts, ccStmts := statementLines(resp)

	clean := newCleaner()
	seen := make(deduper)
	result := &Result{}
	rep := &result.Report

	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rep.Rows++

		item, ok := clean.item(payeeName(line.tx))
		if !ok {
			rep.Placeholders++
			continue
		}

		at := line.tx.DtPosted.Time
		if at.IsZero() {
			rep.BadTimestamps++
			continue
		}

		txID := line.account + ":" + at.Format(DateLayout)
		li := newLineItem(txID, item, at, source)
		if !seen.first(&li) {
			rep.Duplicates++
			continue
		}
		result.Items = append(result.Items, li)
	}
	rep.Kept = len(result.Items)

	p.logger.Info("Parsed OFX file",
		"source", source,
		"transactions", rep.Rows,
		"kept", rep.Kept,
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return result, nil
}

func statementLines(resp *ofxgo.Response) (lines []statementLine, bankStmts, ccStmts int) {
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		bankStmts++
		if stmt.BankTranList == nil {
			continue
		}
		for _, tx := range stmt.BankTranList.Transactions {
			lines = append(lines, statementLine{tx: tx, account: string(stmt.BankAcctFrom.AcctID)})
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		ccStmts++
		if stmt.BankTranList == nil {
			continue
		}
		for _, tx := range stmt.BankTranList.Transactions {
			lines = append(lines, statementLine{tx: tx, account: string(stmt.CCAcctFrom.AcctID)})
		}
	}

	return lines, bankStmts, ccStmts
}

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Some SGML exports drop the closing bracket of a bare opening tag.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// payeeName prefers PAYEE, then NAME, then MEMO when NAME is generic, and
// strips card-network prefixes and leading MM/DD dates.
func payeeName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := strings.TrimSpace(string(tx.Name))
	if _, generic := genericDescriptions[strings.ToUpper(name)]; generic && tx.Memo != "" {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range payeePrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}
