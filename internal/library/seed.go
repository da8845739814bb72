package library

import (
	"github.com/rsclarke/darkdork/internal/logging"
	"github.com/rsclarke/darkdork/internal/models"
)

type builtinDork struct {
	query       string
	name        string
	category    string
	description string
	severity    models.Severity
	tags        []string
}

var builtins = []builtinDork{
	{`filetype:pdf confidential`, "Confidential PDFs", "Exposed Documents",
		"Find PDF files marked as confidential", models.SeverityHigh, []string{"documents", "pdf", "leak"}},
	{`filetype:xlsx password`, "Excel with Passwords", "Exposed Documents",
		"Find Excel files containing passwords", models.SeverityCritical, []string{"documents", "excel", "credentials"}},
	{`filetype:docx "internal use only"`, "Internal Documents", "Exposed Documents",
		"Find Word documents marked internal", models.SeverityMedium, []string{"documents", "internal"}},
	{`filetype:csv email`, "CSV Email Lists", "Exposed Documents",
		"Find CSV files with email addresses", models.SeverityMedium, []string{"documents", "pii"}},
	{`filetype:pptx confidential`, "Confidential Presentations", "Exposed Documents",
		"Find confidential PowerPoint presentations", models.SeverityHigh, []string{"documents", "presentations"}},

	{`inurl:admin intitle:login`, "Admin Login Pages", "Login Pages",
		"Discover admin login interfaces", models.SeverityMedium, []string{"admin", "authentication"}},
	{`inurl:administrator intitle:login`, "Administrator Pages", "Login Pages",
		"Find administrator login pages", models.SeverityMedium, []string{"admin", "authentication"}},
	{`intitle:"Dashboard" inurl:admin`, "Admin Dashboards", "Login Pages",
		"Locate admin dashboard interfaces", models.SeverityMedium, []string{"admin", "dashboard"}},
	{`inurl:wp-login.php`, "WordPress Logins", "Login Pages",
		"Find WordPress login pages", models.SeverityLow, []string{"cms", "wordpress"}},
	{`intitle:phpMyAdmin "Welcome to phpMyAdmin"`, "phpMyAdmin Instances", "Login Pages",
		"Locate phpMyAdmin installations", models.SeverityMedium, []string{"database", "mysql"}},

	{`intitle:"index of" .env`, "Exposed .env Files", "Configuration",
		"Find exposed environment configuration files", models.SeverityCritical, []string{"config", "credentials"}},
	{`intitle:"index of" config.php`, "PHP Config Files", "Configuration",
		"Locate exposed PHP configuration files", models.SeverityHigh, []string{"config", "php"}},
	{`filetype:env DB_PASSWORD`, "Database Credentials in ENV", "Configuration",
		"Find .env files with database passwords", models.SeverityCritical, []string{"config", "credentials", "database"}},
	{`intitle:"index of" wp-config.php`, "WordPress Configs", "Configuration",
		"Find exposed WordPress configuration files", models.SeverityHigh, []string{"config", "wordpress"}},
	{`filetype:ini "password"`, "INI Files with Passwords", "Configuration",
		"Locate INI configuration files containing passwords", models.SeverityHigh, []string{"config", "credentials"}},

	{`filetype:sql "CREATE TABLE"`, "SQL Database Dumps", "Databases",
		"Find SQL database dump files", models.SeverityCritical, []string{"database", "sql", "leak"}},
	{`intext:"SQL syntax" "mysql"`, "MySQL Errors", "Databases",
		"Find pages exposing MySQL errors", models.SeverityMedium, []string{"database", "error", "mysql"}},
	{`intitle:"index of" database.sql`, "Database SQL Files", "Databases",
		"Locate database SQL dump files", models.SeverityCritical, []string{"database", "sql"}},
	{`filetype:mdb`, "Access Databases", "Databases",
		"Find Microsoft Access database files", models.SeverityHigh, []string{"database", "access"}},

	{`filetype:env API_KEY`, "API Keys in ENV Files", "API & Secrets",
		"Find API keys in environment files", models.SeverityCritical, []string{"api", "credentials", "keys"}},
	{`"api_key" filetype:json`, "API Keys in JSON", "API & Secrets",
		"Locate API keys in JSON files", models.SeverityCritical, []string{"api", "credentials", "keys"}},
	{`"BEGIN RSA PRIVATE KEY"`, "RSA Private Keys", "API & Secrets",
		"Find exposed RSA private keys", models.SeverityCritical, []string{"credentials", "keys", "ssl"}},
	{`"authorization: Bearer"`, "Bearer Tokens", "API & Secrets",
		"Discover exposed authorization tokens", models.SeverityCritical, []string{"api", "credentials", "tokens"}},
	{`filetype:properties password`, "Java Properties with Passwords", "API & Secrets",
		"Find Java properties files with passwords", models.SeverityHigh, []string{"config", "credentials", "java"}},

	{`site:s3.amazonaws.com`, "AWS S3 Buckets", "Cloud Storage",
		"Find potentially exposed AWS S3 buckets", models.SeverityHigh, []string{"cloud", "aws", "storage"}},
	{`site:storage.googleapis.com`, "Google Cloud Storage", "Cloud Storage",
		"Find potentially exposed Google Cloud storage", models.SeverityHigh, []string{"cloud", "gcp", "storage"}},
	{`site:blob.core.windows.net`, "Azure Blob Storage", "Cloud Storage",
		"Find potentially exposed Azure blob storage", models.SeverityHigh, []string{"cloud", "azure", "storage"}},

	{`intitle:"Network Camera"`, "Network Cameras", "Network Devices",
		"Find exposed network cameras", models.SeverityHigh, []string{"iot", "camera", "surveillance"}},
	{`inurl:8080 -intext:8080 intitle:"Surveillance"`, "Surveillance Systems", "Network Devices",
		"Locate surveillance system interfaces", models.SeverityHigh, []string{"iot", "surveillance"}},
	{`intitle:"NetcamSC*" | intitle:"NetcamXL*" inurl:home/`, "Netcam Devices", "Network Devices",
		"Find Netcam surveillance devices", models.SeverityHigh, []string{"iot", "camera"}},
	{`inurl:view/view.shtml`, "IP Camera Views", "Network Devices",
		"Discover IP camera view interfaces", models.SeverityHigh, []string{"iot", "camera"}},

	{`intitle:"index of" ".git"`, "Exposed Git Repositories", "Source Code",
		"Find exposed .git directories", models.SeverityHigh, []string{"git", "source", "leak"}},
	{`intitle:"index of" ".svn"`, "Exposed SVN Repositories", "Source Code",
		"Find exposed SVN repositories", models.SeverityHigh, []string{"svn", "source", "leak"}},
	{`filetype:log intext:password`, "Log Files with Passwords", "Source Code",
		"Find log files containing passwords", models.SeverityHigh, []string{"logs", "credentials"}},

	{`inurl:shell.php`, "PHP Web Shells", "Web Applications",
		"Find potential PHP web shells", models.SeverityCritical, []string{"webshell", "backdoor", "php"}},
	{`inurl:c99.php`, "C99 Web Shells", "Web Applications",
		"Locate C99 web shell instances", models.SeverityCritical, []string{"webshell", "backdoor", "php"}},
	{`intitle:"Index of" "backup"`, "Backup Directories", "Web Applications",
		"Find exposed backup directories", models.SeverityHigh, []string{"backup", "leak"}},
	{`intitle:"PHP Version" "System"`, "PHP Info Pages", "Web Applications",
		"Find exposed phpinfo() pages", models.SeverityMedium, []string{"php", "info", "disclosure"}},

	{`intitle:"Dashboard [Jenkins]"`, "Jenkins Dashboards", "CI/CD",
		"Locate Jenkins CI/CD instances", models.SeverityMedium, []string{"cicd", "jenkins", "devops"}},
	{`intitle:"Kubernetes Dashboard"`, "Kubernetes Dashboards", "CI/CD",
		"Find Kubernetes dashboard interfaces", models.SeverityHigh, []string{"kubernetes", "devops", "container"}},
	{`inurl:"gitlab" intitle:"Sign in"`, "GitLab Instances", "CI/CD",
		"Discover GitLab installations", models.SeverityLow, []string{"git", "devops", "gitlab"}},
	{`intitle:"Travis CI"`, "Travis CI Instances", "CI/CD",
		"Find Travis CI dashboards", models.SeverityLow, []string{"cicd", "travis", "devops"}},

	{`intext:"Warning: mysql_connect()"`, "MySQL Connection Errors", "Error Messages",
		"Find MySQL connection error messages", models.SeverityMedium, []string{"error", "mysql", "debug"}},
	{`intext:"Fatal error" intext:"Call to undefined function"`, "PHP Fatal Errors", "Error Messages",
		"Locate PHP fatal error messages", models.SeverityLow, []string{"error", "php", "debug"}},
	{`intitle:"Error" "The server encountered an internal error"`, "Server Errors", "Error Messages",
		"Find server internal error pages", models.SeverityLow, []string{"error", "server"}},

	{`filetype:xls inurl:"email.xls"`, "Email Lists in Excel", "OSINT",
		"Find Excel files containing email lists", models.SeverityMedium, []string{"osint", "email", "pii"}},
	{`filetype:csv inurl:"contact"`, "Contact Databases", "OSINT",
		"Locate CSV files with contact information", models.SeverityMedium, []string{"osint", "contact", "pii"}},
	{`"@gmail.com" filetype:xls`, "Gmail Addresses in Spreadsheets", "OSINT",
		"Find spreadsheets containing Gmail addresses", models.SeverityLow, []string{"osint", "email"}},

	{`inurl:"androidmanifest.xml" ext:xml`, "Android Manifests", "Mobile",
		"Find exposed Android manifest files", models.SeverityLow, []string{"mobile", "android"}},
	{`filetype:apk`, "APK Files", "Mobile",
		"Locate Android APK files", models.SeverityLow, []string{"mobile", "android", "apk"}},

	{`filetype:xls intext:"budget" "confidential"`, "Budget Spreadsheets", "Financial",
		"Find confidential budget spreadsheets", models.SeverityHigh, []string{"financial", "sensitive"}},
	{`filetype:pdf "invoice" "total amount"`, "Invoice Documents", "Financial",
		"Locate invoice PDF documents", models.SeverityMedium, []string{"financial", "invoice"}},

	{`filetype:xls intext:"patient" "medical"`, "Medical Records", "Healthcare",
		"Find medical record spreadsheets", models.SeverityCritical, []string{"healthcare", "pii", "hipaa"}},
	{`filetype:pdf "medical report" "patient name"`, "Medical Reports", "Healthcare",
		"Locate medical report PDFs", models.SeverityCritical, []string{"healthcare", "pii", "hipaa"}},

	{`site:.gov filetype:pdf "confidential"`, "Government Confidential Docs", "Government",
		"Find confidential government documents", models.SeverityHigh, []string{"government", "sensitive"}},
	{`site:.gov filetype:xls "budget"`, "Government Budgets", "Government",
		"Locate government budget spreadsheets", models.SeverityMedium, []string{"government", "financial"}},
}

// Seed fills an empty catalog with the built-in dorks and returns how many
// were added. A catalog that already has entries is left alone.
func (l *Library) Seed() (int, error) {
	if l.Len() > 0 {
		return 0, nil
	}

	batch := make([]NewDork, len(builtins))
	for i, b := range builtins {
		batch[i] = NewDork{
			Query:       b.query,
			Name:        b.name,
			Category:    b.category,
			Description: b.description,
			Severity:    string(b.severity),
			Tags:        b.tags,
			Metadata:    map[string]any{"source": "builtin"},
		}
	}
	ids, err := l.AddBatch(batch)
	if err != nil {
		return 0, err
	}

	l.logger.Info("library seeded", logging.Path(l.path), logging.Count(len(ids)))
	return len(ids), nil
}
