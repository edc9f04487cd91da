package node

import (
	"github.com/kdocs/flowd/docs"
)

// ocrProcessor runs text extraction on the execution's document and stores
// the result on the document as well as in the execution context.
type ocrProcessor struct {
	baseExecutor
	docs docs.Repository
}

var _ Executor = new(ocrProcessor)

func NewOcrProcessor(repo docs.Repository) *ocrProcessor {
	return &ocrProcessor{
		baseExecutor: newBaseExecutor(map[string]FieldRule{
			"force": {Type: "boolean", Default: false},
		}),
		docs: repo,
	}
}

func (p *ocrProcessor) Execute(bag *ContextBag, config map[string]any) Result {
	if bag.DocumentId() == "" {
		return Failed("no document associated with execution")
	}
	doc, err := p.docs.GetDocument(bag.DocumentId())
	if err != nil {
		return Failed("document not found")
	}
	if doc.OcrText != "" && !cfgBool(config, "force", false) {
		bag.Set("ocr_text", doc.OcrText)
		return Success(map[string]any{
			"ocr_text": doc.OcrText,
			"skipped":  true,
		})
	}
	text, err := p.docs.ExtractText(doc)
	if err != nil {
		return Failed(err.Error())
	}
	if err := p.docs.UpdateFields(bag.DocumentId(), map[string]any{"ocr_text": text}); err != nil {
		return Failed(err.Error())
	}
	bag.Set("ocr_text", text)
	return Success(map[string]any{
		"ocr_text":   text,
		"char_count": len(text),
	})
}
