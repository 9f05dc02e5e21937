// Package mailbox fetches and decodes candidate messages over IMAP.
// The search filter is advisory volume control only; the classifier decides
// what is actually job-related.
package mailbox

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"jobtrack-agent/internal/domain"
)

// SearchFilter is the structured form of the mailbox query: a date lower
// bound plus an OR of sender/subject keyword heuristics.
type SearchFilter struct {
	Since      time.Time
	SenderAny  []string
	SubjectAny []string
}

// IMAP is a one-shot mailbox client: each call dials, logs in, selects the
// folder, fetches, and logs out. Runs are minutes apart, so holding a
// connection open buys nothing.
type IMAP struct {
	Addr     string
	Username string
	Password string
	Folder   string
}

func (m *IMAP) folder() string {
	if m.Folder == "" {
		return "INBOX"
	}
	return m.Folder
}

func (m *IMAP) dial(ctx context.Context) (*imapclient.Client, error) {
	if m.Addr == "" {
		return nil, errors.New("imap addr is required")
	}
	if m.Username == "" || m.Password == "" {
		return nil, errors.New("imap username/password is required")
	}

	c, err := imapclient.DialTLS(m.Addr, &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}

	// Best-effort close on context cancel.
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(m.Username, m.Password).Wait(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}

	if _, err := c.Select(m.folder(), &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		logoutAndClose(c)
		return nil, fmt.Errorf("imap select %q: %w", m.folder(), err)
	}
	return c, nil
}

// Fetch returns up to max messages matching filter, newest first, bodies
// decoded to plain text.
func (m *IMAP) Fetch(ctx context.Context, filter SearchFilter, max int) ([]domain.RawMessage, error) {
	if max <= 0 {
		max = 10
	}

	c, err := m.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer logoutAndClose(c)

	criteria := buildCriteria(filter)
	searchData, err := c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	// Higher UID means newer; take the most recent window.
	sort.Slice(uids, func(i, j int) bool { return uids[i] > uids[j] })
	if len(uids) > max {
		uids = uids[:max]
	}

	return m.fetchUIDs(ctx, c, uids)
}

// FetchByID retrieves one message by the identifier a previous Fetch produced:
// either a Message-Id header value or the "uid:<n>" fallback.
func (m *IMAP) FetchByID(ctx context.Context, id string) (domain.RawMessage, error) {
	c, err := m.dial(ctx)
	if err != nil {
		return domain.RawMessage{}, err
	}
	defer logoutAndClose(c)

	var uids []imap.UID
	if n, ok := strings.CutPrefix(id, "uid:"); ok {
		v, err := strconv.ParseUint(n, 10, 32)
		if err != nil {
			return domain.RawMessage{}, fmt.Errorf("bad uid identifier %q: %w", id, err)
		}
		uids = []imap.UID{imap.UID(v)}
	} else {
		criteria := &imap.SearchCriteria{
			Header: []imap.SearchCriteriaHeaderField{{Key: "Message-Id", Value: id}},
		}
		searchData, err := c.UIDSearch(criteria, nil).Wait()
		if err != nil {
			return domain.RawMessage{}, fmt.Errorf("imap uid search message-id: %w", err)
		}
		uids = searchData.AllUIDs()
	}
	if len(uids) == 0 {
		return domain.RawMessage{}, fmt.Errorf("message %q not found", id)
	}

	msgs, err := m.fetchUIDs(ctx, c, uids[:1])
	if err != nil {
		return domain.RawMessage{}, err
	}
	if len(msgs) == 0 {
		return domain.RawMessage{}, fmt.Errorf("message %q not found", id)
	}
	return msgs[0], nil
}

func (m *IMAP) fetchUIDs(ctx context.Context, c *imapclient.Client, uids []imap.UID) ([]domain.RawMessage, error) {
	uidSet := imap.UIDSetNum(uids...)

	// BODY.PEEK[] so fetching never sets \Seen.
	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchCmd := c.Fetch(uidSet, &imap.FetchOptions{
		UID:          true,
		Envelope:     true,
		InternalDate: true,
		BodySection:  []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	out := make([]domain.RawMessage, 0, len(uids))
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		var raw []byte
		if b := buf.FindBodySection(bodyAll); b != nil {
			raw = append([]byte(nil), b...)
		}

		msg := decodeMessage(raw, buf.UID)
		if buf.Envelope != nil {
			if msg.Subject == "" {
				msg.Subject = decodeRFC2047(buf.Envelope.Subject)
			}
			if msg.Sender == "" {
				msg.Sender = joinAddrs(buf.Envelope.From)
			}
			if msg.Date.IsZero() {
				msg.Date = buf.Envelope.Date
			}
		}
		if msg.Date.IsZero() {
			msg.Date = buf.InternalDate
		}
		out = append(out, msg)
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

// buildCriteria turns the filter into IMAP search criteria: SINCE plus a
// folded OR tree over the From/Subject keyword heuristics.
func buildCriteria(filter SearchFilter) *imap.SearchCriteria {
	criteria := &imap.SearchCriteria{Since: filter.Since}

	var terms []imap.SearchCriteria
	for _, s := range filter.SenderAny {
		if s = strings.TrimSpace(s); s != "" {
			terms = append(terms, imap.SearchCriteria{
				Header: []imap.SearchCriteriaHeaderField{{Key: "From", Value: s}},
			})
		}
	}
	for _, s := range filter.SubjectAny {
		if s = strings.TrimSpace(s); s != "" {
			terms = append(terms, imap.SearchCriteria{
				Header: []imap.SearchCriteriaHeaderField{{Key: "Subject", Value: s}},
			})
		}
	}

	switch len(terms) {
	case 0:
	case 1:
		criteria.Header = terms[0].Header
	default:
		acc := terms[0]
		for _, t := range terms[1:] {
			acc = imap.SearchCriteria{Or: [][2]imap.SearchCriteria{{acc, t}}}
		}
		criteria.Or = acc.Or
	}
	return criteria
}

func joinAddrs(addrs []imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for i := range addrs {
		a := &addrs[i]
		addr := strings.TrimSpace(a.Addr())
		if addr == "" {
			addr = strings.TrimSpace(a.Name)
		}
		if addr != "" {
			parts = append(parts, addr)
		}
	}
	return strings.Join(parts, ", ")
}

func logoutAndClose(c *imapclient.Client) {
	_ = c.Logout().Wait()
	_ = c.Close()
}
