package tableHeaders

var OutdatedTableHeaders = []string{"Package", "Current", "Latest", "Type", "Update", "Safe"}

var VulnerabilityTableHeaders = []string{"Package", "Severity", "Title", "CVE", "Fixed In"}

var FailedLookupTableHeaders = []string{"Package", "Error"}

var ExcelOutdatedHeaders = []string{"Package", "Current Version", "Declared Constraint", "Latest Version", "Dependency Type", "Update Type", "Safe", "Breaking"}

var ExcelVulnerabilityHeaders = []string{"Package", "Severity", "Title", "CVE", "Url", "Affected Range", "Fixed In", "Fix Available"}
