package detect

// builtinSecrets are the secret detectors, in evaluation order.
var builtinSecrets = []Definition{
	{
		Name:        "AWS Access Key ID",
		Pattern:     `\bAKIA[0-9A-Z]{16}\b`,
		Severity:    SeverityHigh,
		Remediation: "Rotate this AWS access key immediately. Generate a new key pair and update all applications.",
	},
	{
		Name:        "AWS Secret Access Key",
		Pattern:     `\b(?:AKIA[0-9A-Z]{16})?[a-zA-Z0-9+/]{40}\b`,
		Severity:    SeverityCritical,
		Remediation: "This appears to be an AWS secret access key. Rotate immediately and revoke all permissions.",
	},
	{
		// No trailing boundary: a token followed by more alphanumerics is still reported.
		Name:        "GitHub Personal Access Token",
		Pattern:     `\bghp_[a-zA-Z0-9]{36}`,
		Severity:    SeverityCritical,
		Remediation: "GitHub token detected! Revoke this token immediately from GitHub settings and generate a new one.",
	},
	{
		Name:        "GitHub OAuth Token",
		Pattern:     `\bgho_[a-zA-Z0-9]{36}`,
		Severity:    SeverityCritical,
		Remediation: "GitHub OAuth token detected! Revoke this token and regenerate application secrets.",
	},
	{
		Name:        "Slack Token",
		Pattern:     `\bxox[baprs]-[0-9a-zA-Z]{10,48}\b`,
		Severity:    SeverityHigh,
		Remediation: "Slack token detected. Rotate this token in Slack admin panel.",
	},
	{
		Name:        "Stripe API Key",
		Pattern:     `\bsk_(?:live|test)_[a-zA-Z0-9]{24}\b`,
		Severity:    SeverityCritical,
		Remediation: "Stripe API key detected! Rotate this key immediately in Stripe dashboard.",
	},
	{
		Name:        "PayPal API Key",
		Pattern:     `\bA[a-zA-Z0-9]{20,}\b`,
		Severity:    SeverityHigh,
		Remediation: "PayPal API key detected. Rotate this key in PayPal developer console.",
	},
	{
		Name:        "Google API Key",
		Pattern:     `\bAIza[0-9A-Za-z_-]{35}\b`,
		Severity:    SeverityHigh,
		Remediation: "Google API key detected. Rotate this key in Google Cloud Console.",
	},
	{
		Name:        "JWT Token",
		Pattern:     `\beyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_.+/-]+\b`,
		Severity:    SeverityMedium,
		Remediation: "JWT token detected. Ensure this is not a long-lived token and consider rotating.",
	},
	{
		Name:        "Generic API Key",
		Pattern:     `(?i)\bapi[_-]?key[a-zA-Z0-9_-]*[=:]\s*['"]?([a-zA-Z0-9_-]{20,})['"]?\b`,
		Group:       1,
		Severity:    SeverityMedium,
		Remediation: "Potential API key detected. Verify if this is sensitive and rotate if necessary.",
	},
}

// builtinPII are the personal-data detectors, in evaluation order.
var builtinPII = []Definition{
	{
		Name:        "Email Address",
		Pattern:     `\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`,
		Severity:    SeverityMedium,
		Remediation: "Email address detected. Consider using placeholder emails or anonymizing this data.",
	},
	{
		Name:        "US Phone Number",
		Pattern:     `\b(?:\+?1[-.\s]?)?\(?([0-9]{3})\)?[-.\s]?([0-9]{3})[-.\s]?([0-9]{4})\b`,
		Severity:    SeverityMedium,
		Remediation: "Phone number detected. Consider anonymizing or using test data.",
	},
	{
		Name:        "US SSN",
		Pattern:     `\b[0-9]{3}-[0-9]{2}-[0-9]{4}\b`,
		Severity:    SeverityCritical,
		Remediation: "Social Security Number detected! This must be removed immediately and never committed.",
	},
	{
		Name:        "Credit Card Number",
		Pattern:     `\b(?:4[0-9]{12}(?:[0-9]{3})?|5[1-5][0-9]{14}|6(?:011|5[0-9]{2})[0-9]{12}|3[47][0-9]{13}|3(?:0[0-5]|[68][0-9])[0-9]{11}|(?:2131|1800|35[0-9]{3})[0-9]{11})\b`,
		Severity:    SeverityCritical,
		Remediation: "Credit card number detected! This must be removed immediately. Never commit payment information.",
	},
	{
		Name:        "IPv4 Address",
		Pattern:     `\b[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\b`,
		Severity:    SeverityLow,
		Remediation: "IP address detected. Consider if this should be anonymized for privacy.",
	},
	{
		Name:        "Potential Full Name",
		Pattern:     `\b[A-Z][a-z]+ [A-Z][a-z]+\b`,
		Severity:    SeverityLow,
		Remediation: "Potential personal name detected. Consider anonymizing personal information.",
	},
}
