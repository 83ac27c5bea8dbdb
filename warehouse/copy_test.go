package warehouse

import (
	"strings"
	"testing"
)

func TestBuildCopyWithKeys(t *testing.T) {
	target := Target{Schema: "analytics", Table: "events"}
	creds := Credentials{AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "s3cr3t"}

	sql, redacted, err := BuildCopy(target, "s3://bucket/events-abc123", creds, nil)
	if err != nil {
		t.Fatalf("BuildCopy error: %v", err)
	}

	if !strings.HasPrefix(sql, `COPY "analytics"."events" FROM 's3://bucket/events-abc123'`) {
		t.Errorf("unexpected statement head: %s", sql)
	}
	for _, opt := range DefaultCopyOptions {
		if !strings.Contains(sql, opt) {
			t.Errorf("statement missing default option %q", opt)
		}
	}
	if !strings.Contains(sql, "ACCESS_KEY_ID 'AKIAEXAMPLE'") || !strings.Contains(sql, "SECRET_ACCESS_KEY 's3cr3t'") {
		t.Errorf("statement missing credential clauses: %s", sql)
	}
	if strings.Contains(sql, "SESSION_TOKEN") {
		t.Error("SESSION_TOKEN emitted without a token")
	}

	if strings.Contains(redacted, "s3cr3t") || strings.Contains(redacted, "AKIAEXAMPLE") {
		t.Errorf("redacted statement leaks credentials: %s", redacted)
	}
	if !strings.Contains(redacted, "'[redacted]'") {
		t.Errorf("redacted statement has no mask: %s", redacted)
	}
}

func TestBuildCopyWithSessionToken(t *testing.T) {
	target := Target{Schema: "public", Table: "t"}
	creds := Credentials{AccessKeyID: "k", SecretAccessKey: "s", SessionToken: "tok"}

	sql, redacted, err := BuildCopy(target, "s3://b/k", creds, nil)
	if err != nil {
		t.Fatalf("BuildCopy error: %v", err)
	}
	if !strings.Contains(sql, "SESSION_TOKEN 'tok'") {
		t.Errorf("statement missing session token: %s", sql)
	}
	if strings.Contains(redacted, "'tok'") {
		t.Errorf("redacted statement leaks session token: %s", redacted)
	}
}

func TestBuildCopyWithIAMRole(t *testing.T) {
	target := Target{Schema: "public", Table: "t"}
	creds := Credentials{IAMRole: "arn:aws:iam::123456789012:role/loader"}

	sql, _, err := BuildCopy(target, "s3://b/k", creds, nil)
	if err != nil {
		t.Fatalf("BuildCopy error: %v", err)
	}
	if !strings.Contains(sql, "IAM_ROLE 'arn:aws:iam::123456789012:role/loader'") {
		t.Errorf("statement missing IAM_ROLE clause: %s", sql)
	}
	if strings.Contains(sql, "ACCESS_KEY_ID") {
		t.Error("key clauses emitted alongside IAM_ROLE")
	}
}

func TestBuildCopyEscapesLiterals(t *testing.T) {
	target := Target{Schema: "public", Table: "t"}
	creds := Credentials{AccessKeyID: "k", SecretAccessKey: "se'cret"}

	sql, _, err := BuildCopy(target, "s3://b/k", creds, nil)
	if err != nil {
		t.Fatalf("BuildCopy error: %v", err)
	}
	if !strings.Contains(sql, "SECRET_ACCESS_KEY 'se''cret'") {
		t.Errorf("embedded quote not escaped: %s", sql)
	}
}

func TestBuildCopyCustomOptions(t *testing.T) {
	target := Target{Schema: "public", Table: "t"}
	creds := Credentials{IAMRole: "arn:aws:iam::1:role/r"}

	sql, _, err := BuildCopy(target, "s3://b/k", creds, []string{"FORMAT AS CSV", "DELIMITER '|'"})
	if err != nil {
		t.Fatalf("BuildCopy error: %v", err)
	}
	if !strings.Contains(sql, "DELIMITER '|'") {
		t.Errorf("custom option missing: %s", sql)
	}
	if strings.Contains(sql, "IGNOREHEADER") {
		t.Error("default options applied despite custom options")
	}
}

func TestBuildCopyRequiresCredentials(t *testing.T) {
	target := Target{Schema: "public", Table: "t"}
	if _, _, err := BuildCopy(target, "s3://b/k", Credentials{}, nil); err == nil {
		t.Fatal("BuildCopy accepted empty credentials")
	}
	if _, _, err := BuildCopy(target, "s3://b/k", Credentials{AccessKeyID: "k"}, nil); err == nil {
		t.Fatal("BuildCopy accepted a key ID without a secret")
	}
}
