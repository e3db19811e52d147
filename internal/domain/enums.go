package domain

// DocumentType is the business-document category driving template and schema
// selection. It is a closed set: free-form category strings coming from the
// catalog are rejected at the boundary via ParseDocumentType.
type DocumentType string

const (
	DocTypePurchaseOrder   DocumentType = "purchase_order"
	DocTypeProformaInvoice DocumentType = "proforma_invoice"
	DocTypeBankPayment     DocumentType = "bank_payment"
	DocTypeClientInvoice   DocumentType = "client_invoice"
	DocTypeUnknown         DocumentType = "unknown"
)

// AllDocumentTypes lists every concrete document type (excludes unknown).
var AllDocumentTypes = []DocumentType{
	DocTypePurchaseOrder,
	DocTypeProformaInvoice,
	DocTypeBankPayment,
	DocTypeClientInvoice,
}

// ParseDocumentType maps a raw category string to a DocumentType,
// returning DocTypeUnknown for anything outside the closed set.
func ParseDocumentType(s string) DocumentType {
	switch DocumentType(s) {
	case DocTypePurchaseOrder, DocTypeProformaInvoice, DocTypeBankPayment, DocTypeClientInvoice:
		return DocumentType(s)
	default:
		return DocTypeUnknown
	}
}

// Known reports whether the type is a concrete category (not unknown).
func (t DocumentType) Known() bool {
	return t != DocTypeUnknown && t != ""
}

// PromptSystem identifies which template namespace serves a request.
type PromptSystem string

const (
	PromptSystemManaged PromptSystem = "managed"
	PromptSystemLegacy  PromptSystem = "legacy"
)

// UserRole defines the caller's role as carried in JWT claims.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
	FileTypeXLSX FileType = "xlsx"
)

// AllowedContentTypes maps MIME content types to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FileTypeXLSX,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
	"xlsx": FileTypeXLSX,
}
