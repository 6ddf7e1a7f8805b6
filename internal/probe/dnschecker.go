package probe

import (
	"context"
	"net/url"
	"strings"
)

type DNSChecker struct{}

func NewDNSChecker() *DNSChecker {
	return &DNSChecker{}
}

func (d *DNSChecker) Check(ctx context.Context, target string) CheckResult {
	host := extractHost(target)
	dns := CheckDNS(ctx, host)

	return CheckResult{
		Name:    "DNS",
		Success: dns.Class == ClassResolves,
		Message: dns.Class,
	}
}

// Diagnosing wraps a primary checker and, when it fails, appends the DNS
// classification of the host to the failure message.
type Diagnosing struct {
	Primary Checker
	DNS     Checker
}

func NewDiagnosing(primary Checker) *Diagnosing {
	return &Diagnosing{Primary: primary, DNS: NewDNSChecker()}
}

func (d *Diagnosing) Check(ctx context.Context, target string) CheckResult {
	out := d.Primary.Check(ctx, target)
	if out.Success || d.DNS == nil {
		return out
	}
	dns := d.DNS.Check(ctx, target)
	out.Message = strings.TrimSpace(out.Message + " dns=" + dns.Message)
	return out
}

func extractHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
