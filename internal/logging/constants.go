package logging

// Standard field names for structured log output.
const (
	FieldFile          = "file_path"
	FieldStatement     = "statement"
	FieldCategory      = "category"
	FieldDescription   = "description"
	FieldRecordIndex   = "record_index"
	FieldReason        = "reason"
	FieldOperation     = "operation"
	FieldStatus        = "status"
	FieldError         = "error"
	FieldDuration      = "duration_ms"
	FieldCount         = "count"
	FieldComparisonID  = "comparison_id"
	FieldFormat        = "format"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldComponent     = "component"
	FieldOutputFile    = "output_file"
)
