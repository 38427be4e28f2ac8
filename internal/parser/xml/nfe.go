package xml

import (
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/larachristiea/bumerangue/internal/model"
	"github.com/larachristiea/bumerangue/internal/money"
)

// ParseInvoice parses NFe content into an Invoice. It fails with a
// ParseError on malformed markup and a StructuralError when the
// identification block, issuer block, or line items are missing.
// Numeric fields never fail the document: absent or malformed values
// default to zero so partial extraction can proceed.
func ParseInvoice(content []byte, sourceFile string) (*model.Invoice, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, model.NewParseError(sourceFile, "malformed XML", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, model.NewParseError(sourceFile, "empty XML document", nil)
	}

	nfe := locateNFe(root)
	if nfe == nil {
		return nil, model.NewStructuralError(sourceFile, "NFe", "element not found")
	}
	infNFe := findFirst(nfe, "infNFe")
	if infNFe == nil {
		return nil, model.NewStructuralError(sourceFile, "infNFe", "element not found")
	}

	// ProcessedAt is deliberately left zero: parsing identical bytes
	// must yield identical records, so run metadata is stamped by the
	// batch orchestrator instead.
	inv := &model.Invoice{
		Status:     model.StatusActive,
		Valid:      true,
		SourceFile: sourceFile,
	}
	inv.AccessKey = accessKeyOf(infNFe)

	ide := findFirst(infNFe, "ide")
	if ide == nil {
		return nil, model.NewStructuralError(sourceFile, "ide", "identification block not found")
	}
	inv.Number = text(ide, "nNF")
	inv.Series = text(ide, "serie")
	inv.ModelCode = text(ide, "mod")
	inv.OperationNature = text(ide, "natOp")
	inv.StateCode = text(ide, "cUF")
	inv.IssuedAt = parseTime(text(ide, "dhEmi"))
	if inv.IssuedAt.IsZero() {
		inv.IssuedAt = parseTime(text(ide, "dEmi"))
	}

	emit := findFirst(infNFe, "emit")
	if emit == nil {
		return nil, model.NewStructuralError(sourceFile, "emit", "issuer block not found")
	}
	if cnpj := text(emit, "CNPJ"); cnpj != "" {
		inv.IssuerTaxID = cnpj
	} else {
		inv.IssuerTaxID = text(emit, "CPF")
	}
	inv.IssuerName = text(emit, "xNome")
	inv.IssuerStateReg = text(emit, "IE")

	if dest := findFirst(infNFe, "dest"); dest != nil {
		if cnpj := text(dest, "CNPJ"); cnpj != "" {
			inv.RecipientTaxID = cnpj
		} else {
			inv.RecipientTaxID = text(dest, "CPF")
		}
		inv.RecipientName = text(dest, "xNome")
	}

	parseTotals(infNFe, inv)

	if infAdic := findFirst(infNFe, "infAdic"); infAdic != nil {
		inv.AdditionalInfo = text(infAdic, "infCpl")
	}

	dets := findAll(infNFe, "det")
	if len(dets) == 0 {
		return nil, model.NewStructuralError(sourceFile, "det", "no line items found")
	}
	for _, det := range dets {
		item, ok := parseLineItem(det)
		if !ok {
			inv.AddDiagnostic("line item without product block skipped")
			continue
		}
		inv.Items = append(inv.Items, item)
	}
	if len(inv.Items) == 0 {
		return nil, model.NewStructuralError(sourceFile, "prod", "no parsable line items")
	}

	return inv, nil
}

// locateNFe finds the NFe element, unwrapping a nfeProc envelope when
// present.
func locateNFe(root *etree.Element) *etree.Element {
	if hasLocalName(root, "NFe") {
		return root
	}
	return findFirst(root, "NFe")
}

// accessKeyOf extracts the 44-digit access key from the infNFe Id
// attribute, tolerating the conventional "NFe" prefix.
func accessKeyOf(infNFe *etree.Element) string {
	id := attr(infNFe, "Id")
	return strings.TrimPrefix(strings.TrimSpace(id), "NFe")
}

func parseTotals(infNFe *etree.Element, inv *model.Invoice) {
	total := findFirst(infNFe, "total")
	if total == nil {
		return
	}
	icmsTot := findFirst(total, "ICMSTot")
	if icmsTot == nil {
		return
	}
	inv.GrossTotal = money.ParseLenient(text(icmsTot, "vProd"))
	inv.InvoiceTotal = money.ParseLenient(text(icmsTot, "vNF"))
	inv.DiscountTotal = money.ParseLenient(text(icmsTot, "vDesc"))
	inv.PISTotal = money.ParseLenient(text(icmsTot, "vPIS"))
	inv.COFINSTotal = money.ParseLenient(text(icmsTot, "vCOFINS"))
}

func parseLineItem(det *etree.Element) (model.LineItem, bool) {
	item := model.LineItem{Valid: true}
	if n, err := strconv.Atoi(attr(det, "nItem")); err == nil {
		item.Number = n
	}

	prod := findFirst(det, "prod")
	if prod == nil {
		return item, false
	}
	item.Code = text(prod, "cProd")
	item.EAN = text(prod, "cEAN")
	item.Description = text(prod, "xProd")
	item.NCM = text(prod, "NCM")
	item.CFOP = text(prod, "CFOP")
	item.Unit = text(prod, "uCom")
	item.Quantity = money.ParseLenient(text(prod, "qCom"))
	item.UnitPrice = money.ParseLenient(text(prod, "vUnCom"))
	item.Gross = money.ParseLenient(text(prod, "vProd"))
	item.Discount = money.ParseLenient(text(prod, "vDesc"))
	item.ComputeNet()

	if imposto := findFirst(det, "imposto"); imposto != nil {
		if pis := findFirst(imposto, "PIS"); pis != nil {
			item.PIS = parseTaxDetail(pis, pisGroups, "pPIS", "vPIS")
		}
		if cofins := findFirst(imposto, "COFINS"); cofins != nil {
			item.COFINS = parseTaxDetail(cofins, cofinsGroups, "pCOFINS", "vCOFINS")
		}
	}

	return item, true
}

var (
	pisGroups    = []string{"PISAliq", "PISQtde", "PISNT", "PISOutr"}
	cofinsGroups = []string{"COFINSAliq", "COFINSQtde", "COFINSNT", "COFINSOutr"}
)

// parseTaxDetail reads one contribution sub-block. The schema nests the
// fields under one of several group elements depending on how the item
// is taxed; the first group present wins.
func parseTaxDetail(contrib *etree.Element, groups []string, rateTag, amountTag string) model.TaxDetail {
	for _, group := range groups {
		info := findFirst(contrib, group)
		if info == nil {
			continue
		}
		return model.TaxDetail{
			CST:    text(info, "CST"),
			Base:   money.ParseLenient(text(info, "vBC")),
			Rate:   money.ParseLenient(text(info, rateTag)),
			Amount: money.ParseLenient(text(info, amountTag)),
			Group:  group,
		}
	}
	return model.TaxDetail{}
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
