package ingest

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-analyzer/internal/common"
	"github.com/joseph-ayodele/doc-analyzer/internal/entity"
)

const testBoundary = "----WebKitFormBoundary7MA4YWxkTrZu0gW"

func TestBoundaryFromContentType(t *testing.T) {
	cases := []struct {
		contentType string
		want        string
	}{
		{"multipart/form-data; boundary=abc123", "abc123"},
		{`multipart/form-data; boundary="quoted; value"`, "quoted; value"},
		{"multipart/form-data; BOUNDARY=xyz; charset=utf-8", "xyz"},
		{"multipart/form-data", ""},
		{"application/json", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, BoundaryFromContentType(tc.contentType), tc.contentType)
	}
}

func TestDecodeTwoPartBody(t *testing.T) {
	body := "--" + testBoundary + "\r\n" +
		"Content-Disposition: form-data; name=\"title\"\r\n\r\n" +
		"Quarterly report\r\n" +
		"--" + testBoundary + "\r\n" +
		"Content-Disposition: form-data; name=\"file\"; filename=\"report.txt\"\r\n" +
		"Content-Type: text/plain\r\n\r\n" +
		"line one\r\nline two\r\n" +
		"--" + testBoundary + "--\r\n"

	f, err := Decode([]byte(body), testBoundary)
	require.NoError(t, err)
	assert.Equal(t, "report.txt", f.FileName)
	assert.Equal(t, "text/plain", f.DeclaredContentType)
	assert.Equal(t, "line one\r\nline two", string(f.Payload))
}

func TestDecodeOnlyFirstFile(t *testing.T) {
	body := "--b\r\nContent-Disposition: form-data; name=\"a\"; filename=\"first.txt\"\r\nContent-Type: text/plain\r\n\r\nfirst\r\n" +
		"--b\r\nContent-Disposition: form-data; name=\"b\"; filename=\"second.txt\"\r\nContent-Type: text/plain\r\n\r\nsecond\r\n--b--\r\n"

	f, err := Decode([]byte(body), "b")
	require.NoError(t, err)
	assert.Equal(t, "first.txt", f.FileName)
	assert.Equal(t, "first", string(f.Payload))
}

func TestDecodeDefaults(t *testing.T) {
	body := "--b\r\nContent-Disposition: form-data; name=\"file\"; filename=\r\n\r\ndata\r\n--b--\r\n"

	f, err := Decode([]byte(body), "b")
	require.NoError(t, err)
	assert.Equal(t, "unknown", f.FileName)
	assert.Equal(t, "application/octet-stream", f.DeclaredContentType)
	assert.Equal(t, "data", string(f.Payload))
}

func TestDecodeEmptyContentTypeStaysOnItsLine(t *testing.T) {
	body := "--b\r\n" +
		"Content-Disposition: form-data; name=\"file\"; filename=\"a.bin\"\r\n" +
		"Content-Type:\r\n" +
		"X-Trace: 42\r\n\r\n" +
		"data\r\n--b--\r\n"

	f, err := Decode([]byte(body), "b")
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", f.DeclaredContentType)
	assert.Equal(t, "data", string(f.Payload))
}

func TestDecodeNoFileFound(t *testing.T) {
	body := "--b\r\nContent-Disposition: form-data; name=\"title\"\r\n\r\nhello\r\n--b--\r\n"

	_, err := Decode([]byte(body), "b")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNoFileFound))
	assert.Equal(t, common.CodeNoFileFound, common.ErrorCode(err))
}

func TestDecodeMissingBoundary(t *testing.T) {
	_, err := Decode([]byte("anything"), "")
	assert.True(t, errors.Is(err, common.ErrMissingBoundary))
}

func TestDecodeMalformedHeaders(t *testing.T) {
	body := "--b\r\nContent-Disposition: form-data; name=\"file\"; filename=\"x.txt\"\r\nno separator here"

	_, err := Decode([]byte(body), "b")
	assert.True(t, errors.Is(err, common.ErrMalformedHeaders))
}

func TestDecodeFilenameInPayloadIsNotAFile(t *testing.T) {
	body := "--b\r\nContent-Disposition: form-data; name=\"note\"\r\n\r\nsee filename=\"x\"\r\n--b--\r\n"

	_, err := Decode([]byte(body), "b")
	assert.True(t, errors.Is(err, common.ErrNoFileFound))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("hello world"),
		{},
		{0x00, 0xff, 0x0d, 0x0a, 0x0d, 0x0a, 0x7f},
		append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{0xe2, 0x80, 0x99}, 100)...),
		[]byte("ends with crlf\r\n"),
	}
	for _, p := range payloads {
		in := entity.UploadedFile{FileName: "sample.bin", DeclaredContentType: "application/x-custom", Payload: p}
		body := Encode(testBoundary, in, map[string]string{"description": "ignored"})

		out, err := Decode(body, testBoundary)
		require.NoError(t, err)
		assert.Equal(t, in.FileName, out.FileName)
		assert.Equal(t, in.DeclaredContentType, out.DeclaredContentType)
		assert.Equal(t, len(in.Payload), len(out.Payload))
		assert.True(t, bytes.Equal(in.Payload, out.Payload))
	}
}
