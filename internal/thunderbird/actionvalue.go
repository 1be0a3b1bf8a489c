package thunderbird

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

var ErrUnsupportedActionValue = errors.New("unsupported actionValue")

var (
	folderURI = regexp.MustCompile(
		`^([a-z][a-z0-9+.-]*)://([^&$+,/:;=?@# <>\[\]{}|\\^]+)@([^&$+,/:;=?@# <>\[\]{}|\\^%]+)/(.*)$`,
	)
	mailAddress = regexp.MustCompile(
		`^[^&$+,/:;=?@# <>\[\]{}|\\^]+@[^&$+,/:;=?@# <>\[\]{}|\\^%]+$`,
	)
)

type ValueKind int

const (
	FolderValue ValueKind = iota + 1
	AddressValue
)

// ActionValue is a decoded actionValue. Folder values carry Scheme,
// Username, Server and Folder; address values carry Address only.
type ActionValue struct {
	Kind     ValueKind
	Scheme   string
	Username string
	Server   string
	Folder   string
	Address  string
}

// DecodeActionValue recognises a folder URI such as
// imap://user@imap.example.com/Archive or a bare mail address.
func DecodeActionValue(raw string) (ActionValue, error) {
	if m := folderURI.FindStringSubmatch(raw); m != nil {
		return ActionValue{
			Kind:     FolderValue,
			Scheme:   m[1],
			Username: unescape(m[2]),
			Server:   m[3],
			Folder:   unescape(m[4]),
		}, nil
	}
	if mailAddress.MatchString(raw) {
		return ActionValue{Kind: AddressValue, Address: raw}, nil
	}
	return ActionValue{}, fmt.Errorf("%w %q", ErrUnsupportedActionValue, raw)
}

// Account names the mailbox a folder value lives in, as scheme://user@server.
func (v ActionValue) Account() string {
	return fmt.Sprintf("%s://%s@%s", v.Scheme, v.Username, v.Server)
}

// unescape percent-decodes s, keeping it as is when it is not valid.
func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}
