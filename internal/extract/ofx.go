package extract

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/tallyflow/tally/internal/service"
)

// OFX transaction types that represent money coming in.
var ofxIncomeTypes = map[string]struct{}{
	"CREDIT":    {},
	"DEP":       {},
	"DIRECTDEP": {},
	"INT":       {},
}

var severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)

// OFXSource reads OFX/QFX statement files and produces extraction payloads
// for the normalizer, so downloaded bank statements skip the free-text
// heuristics entirely.
type OFXSource struct{}

// NewOFXSource creates a new OFX statement source.
func NewOFXSource() *OFXSource {
	return &OFXSource{}
}

// preprocess fixes mixed-case SEVERITY values that some banks emit, which the
// strict OFX parser rejects.
func (s *OFXSource) preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	return severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
}

// Read parses an OFX/QFX document into an extraction payload. Bank and credit
// card statements both contribute transactions; account metadata comes from
// the first statement seen.
func (s *OFXSource) Read(reader io.Reader) (*service.Extraction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(s.preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	extraction := &service.Extraction{}
	extraction.Metadata.Bank = resp.Signon.Org.String()

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		if extraction.Metadata.Account == "" {
			extraction.Metadata.Account = string(stmt.BankAcctFrom.AcctID)
		}
		for _, ofxTx := range stmt.BankTranList.Transactions {
			extraction.Transactions = append(extraction.Transactions, s.convert(ofxTx))
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		if extraction.Metadata.Account == "" {
			extraction.Metadata.Account = string(stmt.CCAcctFrom.AcctID)
		}
		for _, ofxTx := range stmt.BankTranList.Transactions {
			extraction.Transactions = append(extraction.Transactions, s.convert(ofxTx))
		}
	}

	slog.Info("Parsed OFX file",
		"transactions", len(extraction.Transactions),
		"bank", extraction.Metadata.Bank,
		"account", extraction.Metadata.Account)

	return extraction, nil
}

// convert maps one OFX transaction to an extraction record. The amount sign
// is dropped; the normalizer takes absolute values anyway.
func (s *OFXSource) convert(ofxTx ofxgo.Transaction) service.ExtractedTransaction {
	amount, _ := ofxTx.TrnAmt.Float64()

	txType := "expense"
	if _, ok := ofxIncomeTypes[fmt.Sprintf("%v", ofxTx.TrnType)]; ok || amount > 0 {
		txType = "income"
	}

	desc := string(ofxTx.Name)
	if ofxTx.Payee != nil && ofxTx.Payee.Name != "" {
		desc = string(ofxTx.Payee.Name)
	}

	return service.ExtractedTransaction{
		Date:        ofxTx.DtPosted.Time.Format("2006-01-02"),
		Description: desc,
		Amount:      amount,
		Type:        txType,
	}
}
