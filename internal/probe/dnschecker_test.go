package probe

import (
	"context"
	"net"
	"strings"
	"testing"
)

type fakeResolver struct {
	ips   []net.IP
	ipErr error
	ns    []*net.NS
	cname string
}

func (f *fakeResolver) LookupIP(ctx context.Context, network, host string) ([]net.IP, error) {
	return f.ips, f.ipErr
}

func (f *fakeResolver) LookupCNAME(ctx context.Context, host string) (string, error) {
	if f.cname == "" {
		return host + ".", nil
	}
	return f.cname, nil
}

func (f *fakeResolver) LookupNS(ctx context.Context, name string) ([]*net.NS, error) {
	if len(f.ns) == 0 {
		return nil, &net.DNSError{Err: "no such host", Name: name, IsNotFound: true}
	}
	return f.ns, nil
}

func withResolver(t *testing.T, r *fakeResolver) {
	t.Helper()
	prev := resolver
	resolver = r
	t.Cleanup(func() { resolver = prev })
}

func TestCheckDNS_Classes(t *testing.T) {
	notFound := &net.DNSError{Err: "no such host", Name: "x", IsNotFound: true}
	cases := []struct {
		name string
		r    *fakeResolver
		host string
		want string
	}{
		{"resolves", &fakeResolver{ips: []net.IP{net.ParseIP("192.0.2.1")}}, "example.com", ClassResolves},
		{"nxdomain", &fakeResolver{ipErr: notFound}, "nope.example", ClassNXDomain},
		{"ns but no A", &fakeResolver{ipErr: notFound, ns: []*net.NS{{Host: "ns1.example."}}}, "example.com", ClassNoARecord},
		{"timeout", &fakeResolver{ipErr: &net.DNSError{Err: "timeout", IsTimeout: true}}, "slow.example", ClassServfailOrTTL},
		{"invalid", &fakeResolver{}, "https://example.com", ClassInvalidName},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			withResolver(t, c.r)
			if got := CheckDNS(context.Background(), c.host); got.Class != c.want {
				t.Fatalf("class=%s want %s (%+v)", got.Class, c.want, got)
			}
		})
	}
}

func TestCheckDNS_CNAMEAndNameservers(t *testing.T) {
	withResolver(t, &fakeResolver{
		ips:   []net.IP{net.ParseIP("192.0.2.1")},
		cname: "edge.cdn.example.",
		ns:    []*net.NS{{Host: "ns1.example."}, {Host: "ns2.example."}},
	})
	got := CheckDNS(context.Background(), "www.example.com")
	if got.CNAME != "edge.cdn.example" {
		t.Fatalf("cname=%q", got.CNAME)
	}
	if len(got.Nameservers) != 2 || got.Nameservers[0] != "ns1.example" {
		t.Fatalf("nameservers=%v", got.Nameservers)
	}
}

func TestDiagnosing_AppendsDNSClassOnFailure(t *testing.T) {
	withResolver(t, &fakeResolver{ipErr: &net.DNSError{Err: "no such host", IsNotFound: true}})

	d := NewDiagnosing(&fakeChecker{results: []CheckResult{{Success: false, Message: "dial tcp: lookup failed"}}})
	out := d.Check(context.Background(), "https://nope.example")
	if out.Success || !strings.HasSuffix(out.Message, "dns="+ClassNXDomain) {
		t.Fatalf("unexpected: %+v", out)
	}

	ok := NewDiagnosing(&fakeChecker{results: []CheckResult{{Success: true, Message: "200 OK"}}})
	if out := ok.Check(context.Background(), "https://example.com"); out.Message != "200 OK" {
		t.Fatalf("success should not be annotated: %q", out.Message)
	}
}
