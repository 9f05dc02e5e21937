package mailbox

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-imap/v2"

	"jobtrack-agent/internal/domain"
)

const bodyLimit = 6 << 20

// decodeMessage turns raw RFC822 bytes into a RawMessage. The identifier is
// the Message-Id header when present, else a UID-derived fallback; either way
// it is stable across runs so the ledger can dedupe on it.
func decodeMessage(raw []byte, uid imap.UID) domain.RawMessage {
	out := domain.RawMessage{ID: fmt.Sprintf("uid:%d", uid)}
	if len(raw) == 0 {
		return out
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		// Headers unusable; keep raw bytes as a plaintext body.
		out.Body = cleanContent(string(raw))
		return out
	}

	h := msg.Header
	if mid := strings.TrimSpace(h.Get("Message-Id")); mid != "" {
		out.ID = mid
	}
	out.Subject = decodeRFC2047(h.Get("Subject"))
	out.Sender = strings.TrimSpace(h.Get("From"))
	if ds := h.Get("Date"); ds != "" {
		if t, err := mail.ParseDate(ds); err == nil {
			out.Date = t
		}
	}

	bodyRaw, _ := io.ReadAll(io.LimitReader(msg.Body, bodyLimit))
	plain, htmlPart := extractTextParts(h, bodyRaw)

	switch {
	case plain != "":
		out.Body = cleanContent(plain)
	case htmlPart != "":
		out.Body = htmlToText(htmlPart)
	default:
		out.Body = cleanContent(string(bodyRaw))
	}
	return out
}

// extractTextParts walks the MIME structure and returns the longest text/plain
// and text/html parts found, transfer-decoded.
func extractTextParts(h mail.Header, body []byte) (plain, htmlPart string) {
	ct := h.Get("Content-Type")
	cte := strings.ToLower(strings.TrimSpace(h.Get("Content-Transfer-Encoding")))

	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return string(decodeTransferEncoding(body, cte)), ""
	}
	mediaType = strings.ToLower(mediaType)

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return string(decodeTransferEncoding(body, cte)), ""
		}
		mr := multipart.NewReader(bytes.NewReader(body), boundary)

		var bestPlain, bestHTML string
		for {
			p, err := mr.NextPart()
			if err != nil {
				break
			}
			partCTE := strings.ToLower(strings.TrimSpace(p.Header.Get("Content-Transfer-Encoding")))
			pMedia, _, _ := mime.ParseMediaType(p.Header.Get("Content-Type"))
			pMedia = strings.ToLower(pMedia)

			b, _ := io.ReadAll(io.LimitReader(p, bodyLimit))
			b = decodeTransferEncoding(b, partCTE)

			if strings.HasPrefix(pMedia, "multipart/") {
				pl, ht := extractTextParts(mail.Header(p.Header), b)
				if len(pl) > len(bestPlain) {
					bestPlain = pl
				}
				if len(ht) > len(bestHTML) {
					bestHTML = ht
				}
				continue
			}

			switch {
			case strings.HasPrefix(pMedia, "text/plain"):
				if len(b) > len(bestPlain) {
					bestPlain = string(b)
				}
			case strings.HasPrefix(pMedia, "text/html"):
				if len(b) > len(bestHTML) {
					bestHTML = string(b)
				}
			}
		}
		return bestPlain, bestHTML
	}

	s := decodeTransferEncoding(body, cte)
	if strings.HasPrefix(mediaType, "text/html") {
		return "", string(s)
	}
	return string(s), ""
}

func decodeTransferEncoding(b []byte, cte string) []byte {
	switch cte {
	case "base64":
		dec := base64.NewDecoder(base64.StdEncoding, bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, bodyLimit))
		return out
	case "quoted-printable":
		dec := quotedprintable.NewReader(bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, bodyLimit))
		return out
	default:
		return b
	}
}

func decodeRFC2047(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	dec := new(mime.WordDecoder)
	out, err := dec.DecodeHeader(s)
	if err != nil {
		return s
	}
	return out
}

// htmlToText renders an HTML body to whitespace-normalized text.
func htmlToText(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return cleanContent(s)
	}
	doc.Find("script,style").Remove()
	return cleanContent(doc.Text())
}

func cleanContent(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
