package catalog

// Title given to the Route Log entry that records a field diff.
const DetailsUpdatedTitle = "Details updated"

var defaultCatalog = MustNew(
	[]DocumentType{
		{Name: "Disbursement Voucher", ShortCode: "DV"},
		{Name: "Letters", ShortCode: "LTR"},
		{Name: "Other Documents", ShortCode: "OD"},
		{Name: "Purchase Request", ShortCode: "PR"},
		{Name: "Purchase Order", ShortCode: "PO"},
		{Name: "Payroll", ShortCode: "PAY"},
		{Name: "Travel Order", ShortCode: "TO"},
		{Name: "Obligation Request", ShortCode: "OBR"},
	},
	[]Status{
		{Name: "Open", Color: "blue"},
		{Name: "Pending", Color: "orange"},
		{Name: "Approved", Color: "green"},
		{Name: "Returned", Color: "red"},
		{Name: "Released", Color: "cyan"},
		{Name: "Closed", Color: "gray"},
	},
	[]Location{
		{Name: "Records Section", Department: "Administration"},
		{Name: "Administrator's Office", Department: "Administration"},
		{Name: "Office of the Mayor", Department: "Mayor's Office"},
		{Name: "Office of the Vice Mayor", Department: "Vice Mayor's Office"},
		{Name: "Budget Office", Department: "Finance"},
		{Name: "Accounting Office", Department: "Finance"},
		{Name: "Treasury Office", Department: "Finance"},
		{Name: "Human Resource Office", Department: "HR"},
		{Name: "General Services Office", Department: "GSO"},
		{Name: "Engineering Office", Department: "Engineering"},
		{Name: "Civil Registry Office", Department: "Civil Registry"},
		{Name: "Released to Payee", Department: "Finance"},
	},
)

// Default returns the process-wide catalog used by the API.
func Default() *Catalog {
	return defaultCatalog
}
