package extractor

import (
	"docpilot/internal/domain"
)

// lineItemSchema is shared by every itemized document type.
const lineItemSchema = `  "items": [
    {
      "line_number": 0,
      "product_code": "",
      "product_name": "",
      "quantity": 0,
      "unit": "",
      "unit_price": 0,
      "total_price": 0,
      "project_code": ""
    }
  ],`

const headerSchema = `  "document_number": "",
  "document_date": "",
  "supplier": {"name": "", "address": "", "tax_id": "", "country": ""},
  "buyer": {"name": "", "address": "", "tax_id": "", "country": ""},
  "currency": "",
  "total_amount": 0,`

const bankDetailSchema = `  "bank_detail": {
    "payer_bank": "",
    "payee_bank": "",
    "payer_account": "",
    "payee_account": "",
    "transaction_ref": "",
    "value_date": "",
    "payment_reference": ""
  },`

const schemaPreamble = `

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation — just the raw JSON object.
Normalize all dates to DD-MM-YYYY format.
If a field is not present in the document, use empty string for text and 0 for numbers.
Extract EVERY line item. Do not skip, summarize, or omit any items.

The JSON object must follow this schema:
`

const confidenceSuffix = `  "confidence": 0.0,
  "notes": ""
}

"confidence" is your overall confidence in the extraction as a float between 0.0 and 1.0.`

const visionInstruction = `The document is a scanned image with no text layer. Read it visually and extract the data below.

`

// BuildPrompt composes the template's instruction body with the document
// text (or a vision instruction for scanned documents) and the JSON-shape
// schema suffix for the document type.
func BuildPrompt(tpl *domain.Template, doc *domain.Document, docType domain.DocumentType) string {
	prompt := tpl.BodyText

	if doc.IsScanned {
		prompt = visionInstruction + prompt
	} else {
		prompt += "\n\nDOCUMENT TEXT:\n" + doc.RawText
	}

	return prompt + schemaSuffix(docType)
}

func schemaSuffix(docType domain.DocumentType) string {
	schema := "{\n" + headerSchema + "\n"
	switch docType {
	case domain.DocTypeBankPayment:
		schema += bankDetailSchema + "\n"
	default:
		schema += lineItemSchema + "\n"
	}
	return schemaPreamble + schema + confidenceSuffix
}
