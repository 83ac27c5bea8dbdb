package warehouse

import (
	"fmt"
	"strings"
)

// DefaultCopyOptions are the format clauses attached to the COPY statement.
// They must agree exactly with what the staging serializer produces: a CSV
// body with one header line, comma delimiter, and empty fields for NULLs.
var DefaultCopyOptions = []string{
	"IGNOREHEADER 1",
	"FORMAT AS CSV",
	"DELIMITER ','",
	"EMPTYASNULL",
	"ACCEPTANYDATE",
	"DATEFORMAT 'auto'",
	"TIMEFORMAT 'auto'",
}

// Credentials authorize the warehouse to fetch the staged object.
// IAMRole takes precedence when set; otherwise the static key pair (with an
// optional session token) is used.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	IAMRole         string
}

// Validate checks that one usable credential form is present.
func (c Credentials) Validate() error {
	if c.IAMRole != "" {
		return nil
	}
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return fmt.Errorf("either an IAM role or an access key pair is required")
	}
	return nil
}

// BuildCopy constructs the bulk-load statement for a staged object. It
// returns the executable statement and a redacted rendering with credential
// literals masked; only the redacted form may be logged or embedded in
// errors. The target must already have passed ValidateIdentifier; option
// lines and the location are trusted loader-side constants.
func BuildCopy(target Target, location string, creds Credentials, options []string) (sql, redacted string, err error) {
	if err := creds.Validate(); err != nil {
		return "", "", err
	}
	if len(options) == 0 {
		options = DefaultCopyOptions
	}

	var b strings.Builder
	b.WriteString("COPY ")
	b.WriteString(target.QualifiedName())
	b.WriteString(" FROM ")
	b.WriteString(quoteLiteral(location))
	for _, opt := range options {
		b.WriteString("\n")
		b.WriteString(opt)
	}
	head := b.String()

	var auth, authRedacted string
	if creds.IAMRole != "" {
		auth = "\nIAM_ROLE " + quoteLiteral(creds.IAMRole)
		authRedacted = auth
	} else {
		auth = "\nACCESS_KEY_ID " + quoteLiteral(creds.AccessKeyID) +
			"\nSECRET_ACCESS_KEY " + quoteLiteral(creds.SecretAccessKey)
		authRedacted = "\nACCESS_KEY_ID '[redacted]'\nSECRET_ACCESS_KEY '[redacted]'"
		if creds.SessionToken != "" {
			auth += "\nSESSION_TOKEN " + quoteLiteral(creds.SessionToken)
			authRedacted += "\nSESSION_TOKEN '[redacted]'"
		}
	}

	return head + auth, head + authRedacted, nil
}
