package xml

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/larachristiea/bumerangue/internal/model"
)

const cancellationEventCode = model.CancellationEventType

// ParseCancellation parses an NFe event document into a
// CancellationEvent. Events of any other type fail with a
// StructuralError; callers should Detect first.
func ParseCancellation(content []byte, sourceFile string) (*model.CancellationEvent, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, model.NewParseError(sourceFile, "malformed XML", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, model.NewParseError(sourceFile, "empty XML document", nil)
	}

	eventType := text(root, "tpEvento")
	if eventType != cancellationEventCode {
		return nil, model.NewStructuralError(sourceFile, "tpEvento",
			"event type "+eventType+" is not a cancellation")
	}

	key := text(root, "chNFe")
	if key == "" {
		return nil, model.NewStructuralError(sourceFile, "chNFe", "cancelled access key not found")
	}

	ev := &model.CancellationEvent{
		AccessKey:     key,
		EventType:     eventType,
		OccurredAt:    parseTime(text(root, "dhEvento")),
		Justification: text(root, "xJust"),
		Protocol:      text(root, "nProt"),
		SourceFile:    sourceFile,
	}
	if seq, err := strconv.Atoi(text(root, "nSeqEvento")); err == nil {
		ev.Sequence = seq
	}
	return ev, nil
}
