package transport

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"io"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selfSignedCert(t *testing.T) tls.Certificate {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "voxlink-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}
}

func startTLSEcho(t *testing.T) (host string, port uint16) {
	t.Helper()
	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{Certificates: []tls.Certificate{selfSignedCert(t)}})
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 5)
		if err := ReadExact(conn, buf); err != nil {
			return
		}
		_ = WriteAll(conn, buf)
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", uint16(addr.Port)
}

func TestTLSDialerInsecureEcho(t *testing.T) {
	host, port := startTLSEcho(t)
	d := NewTLSDialer(TLSOptions{InsecureSkipVerify: true})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := d.Dial(ctx, host, port)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, WriteAll(s, []byte("hello")))
	buf := make([]byte, 5)
	require.NoError(t, ReadExact(s, buf))
	assert.Equal(t, "hello", string(buf))
}

func TestTLSDialerVerifiesByDefault(t *testing.T) {
	host, port := startTLSEcho(t)
	d := NewTLSDialer(TLSOptions{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := d.Dial(ctx, host, port)
	assert.Error(t, err)
}

func TestTLSDialerHandshakeTimeout(t *testing.T) {
	// Accepts TCP but never answers the ClientHello.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				io.Copy(io.Discard, conn)
			}()
		}
	}()
	port := uint16(ln.Addr().(*net.TCPAddr).Port)

	assert.Equal(t, DefaultDialTimeout, NewTLSDialer(TLSOptions{}).opts.DialTimeout)

	d := NewTLSDialer(TLSOptions{InsecureSkipVerify: true, DialTimeout: 100 * time.Millisecond})
	start := time.Now()
	_, err = d.Dial(context.Background(), "127.0.0.1", port)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestTLSDialerClientCertificateErrors(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "client.p12")
	require.NoError(t, os.WriteFile(bogus, []byte("not a pkcs12 bundle"), 0o600))

	tests := []struct {
		name string
		opts TLSOptions
	}{
		{"missing pem pair", TLSOptions{CertFile: filepath.Join(dir, "nope.pem"), KeyFile: filepath.Join(dir, "nope.key")}},
		{"missing pkcs12", TLSOptions{PKCS12File: filepath.Join(dir, "nope.p12")}},
		{"corrupt pkcs12", TLSOptions{PKCS12File: bogus, PKCS12Password: "secret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTLSDialer(tt.opts).Dial(context.Background(), "127.0.0.1", 1)
			assert.ErrorIs(t, err, ErrClientCertificate)
		})
	}
}

func TestTLSDialerNoClientCertificate(t *testing.T) {
	cert, err := TLSOptions{}.clientCertificate()
	require.NoError(t, err)
	assert.Nil(t, cert)
}
