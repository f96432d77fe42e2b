package engine

const (
	SourceProjects    DataSource = "projects"
	SourceEstimates   DataSource = "estimates"
	SourceQuotes      DataSource = "quotes"
	SourceExpenses    DataSource = "expenses"
	SourceTimeEntries DataSource = "time_entries"
	SourceTraining    DataSource = "training"
)

var (
	joinClient   = JoinDef{Alias: "client", Entity: "clients", LocalKey: "client_id", ForeignKey: "id"}
	joinPayee    = JoinDef{Alias: "payee", Entity: "payees", LocalKey: "payee_id", ForeignKey: "id"}
	joinProject  = JoinDef{Alias: "project", Entity: "projects", LocalKey: "project_id", ForeignKey: "id"}
	joinEstimate = JoinDef{Alias: "estimate", Entity: "estimates", LocalKey: "estimate_id", ForeignKey: "id"}
	joinEmployee = JoinDef{Alias: "employee", Entity: "employees", LocalKey: "employee_id", ForeignKey: "id"}
)

func text(key, label string) FieldMetadata     { return FieldMetadata{Key: key, Label: label, Type: FieldTypeText} }
func number(key, label string) FieldMetadata   { return FieldMetadata{Key: key, Label: label, Type: FieldTypeNumber} }
func currency(key, label string) FieldMetadata { return FieldMetadata{Key: key, Label: label, Type: FieldTypeCurrency} }
func date(key, label string) FieldMetadata     { return FieldMetadata{Key: key, Label: label, Type: FieldTypeDate} }
func boolean(key, label string) FieldMetadata  { return FieldMetadata{Key: key, Label: label, Type: FieldTypeBoolean} }

// ConstructionSources is the catalog of the contractor application.
func ConstructionSources() []SourceDef {
	return []SourceDef{
		{
			Name:   SourceProjects,
			Label:  "Projects",
			Entity: "projects",
			Alias:  "project",
			Joins:  []JoinDef{joinClient, joinPayee},
			Fields: []FieldMetadata{
				text("project_number", "Project #"),
				text("project_name", "Project Name"),
				text("client_name", "Client"),
				text("client_email", "Client Email"),
				text("payee_name", "Primary Subcontractor"),
				text("status", "Status"),
				text("project_type", "Type"),
				date("start_date", "Start Date"),
				date("end_date", "End Date"),
				currency("contract_amount", "Contract Amount"),
				boolean("tax_exempt", "Tax Exempt"),
				date("created_at", "Created"),
			},
		},
		{
			Name:   SourceEstimates,
			Label:  "Estimates",
			Entity: "estimates",
			Alias:  "estimate",
			Joins:  []JoinDef{joinProject, joinClient},
			Fields: []FieldMetadata{
				text("estimate_number", "Estimate #"),
				text("estimate_name", "Estimate"),
				text("project_number", "Project #"),
				text("project_name", "Project Name"),
				text("client_name", "Client"),
				text("status", "Status"),
				number("revision", "Revision"),
				currency("subtotal", "Subtotal"),
				currency("total_amount", "Total"),
				date("valid_until", "Valid Until"),
				date("created_at", "Created"),
			},
		},
		{
			Name:   SourceQuotes,
			Label:  "Quotes",
			Entity: "quotes",
			Alias:  "quote",
			Joins:  []JoinDef{joinEstimate, joinPayee},
			Fields: []FieldMetadata{
				text("quote_number", "Quote #"),
				text("quote_name", "Quote"),
				text("estimate_number", "Estimate #"),
				text("estimate_name", "Estimate"),
				text("payee_name", "Vendor"),
				text("trade", "Trade"),
				text("status", "Status"),
				currency("amount", "Amount"),
				date("received_date", "Received"),
				boolean("accepted", "Accepted"),
				date("created_at", "Created"),
			},
		},
		{
			Name:   SourceExpenses,
			Label:  "Expenses",
			Entity: "expenses",
			Alias:  "expense",
			Joins:  []JoinDef{joinProject, joinPayee},
			Fields: []FieldMetadata{
				date("expense_date", "Date"),
				text("description", "Description"),
				text("category", "Category"),
				currency("amount", "Amount"),
				text("project_number", "Project #"),
				text("project_name", "Project Name"),
				text("payee_name", "Payee"),
				text("payment_method", "Payment Method"),
				boolean("receipt_attached", "Receipt Attached"),
				date("created_at", "Created"),
			},
		},
		{
			Name:   SourceTimeEntries,
			Label:  "Time Entries",
			Entity: "time_entries",
			Joins:  []JoinDef{joinEmployee, joinProject},
			Fields: []FieldMetadata{
				date("work_date", "Date"),
				text("employee_number", "Employee #"),
				text("employee_name", "Employee"),
				text("project_number", "Project #"),
				text("project_name", "Project Name"),
				number("hours", "Hours"),
				currency("hourly_rate", "Rate"),
				boolean("billable", "Billable"),
				text("notes", "Notes"),
				date("created_at", "Created"),
			},
		},
		{
			Name:   SourceTraining,
			Label:  "Training",
			Entity: "training_records",
			Joins:  []JoinDef{joinEmployee},
			Fields: []FieldMetadata{
				text("employee_number", "Employee #"),
				text("employee_name", "Employee"),
				text("course_name", "Course"),
				text("provider", "Provider"),
				date("completed_date", "Completed"),
				date("expires_date", "Expires"),
				number("hours", "Hours"),
				currency("cost", "Cost"),
				boolean("certified", "Certified"),
				date("created_at", "Created"),
			},
		},
	}
}

// NewConstructionCatalog is the catalog used by the service.
func NewConstructionCatalog() *Catalog {
	return NewCatalog(ConstructionSources()...)
}
