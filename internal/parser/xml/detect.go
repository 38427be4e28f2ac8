package xml

import "github.com/beevik/etree"

// DocKind discriminates the document families found in an input
// directory.
type DocKind string

const (
	// KindInvoice is an NFe, possibly wrapped in a nfeProc envelope.
	KindInvoice DocKind = "invoice"
	// KindCancellation is an event document whose type code marks a
	// cancellation.
	KindCancellation DocKind = "cancellation"
	// KindOtherEvent is an event document of any other type.
	KindOtherEvent DocKind = "event"
	// KindUnknown is anything else.
	KindUnknown DocKind = "unknown"
)

// Detect classifies raw XML content by its root structure. Content that
// does not parse at all is KindUnknown; the caller decides whether that
// is worth an error.
func Detect(content []byte) DocKind {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(content); err != nil {
		return KindUnknown
	}
	root := doc.Root()
	if root == nil {
		return KindUnknown
	}
	return detectRoot(root)
}

func detectRoot(root *etree.Element) DocKind {
	switch localName(root.Tag) {
	case "NFe", "nfeProc", "procNFe":
		return KindInvoice
	case "procEventoNFe", "envEvento", "evento", "retEnvEvento":
		if text(root, "tpEvento") == cancellationEventCode {
			return KindCancellation
		}
		return KindOtherEvent
	}
	// Some emitters wrap documents in nonstandard envelopes; fall back
	// to looking for the telltale blocks.
	if findFirst(root, "infNFe") != nil {
		return KindInvoice
	}
	if findFirst(root, "tpEvento") != nil {
		if text(root, "tpEvento") == cancellationEventCode {
			return KindCancellation
		}
		return KindOtherEvent
	}
	return KindUnknown
}
