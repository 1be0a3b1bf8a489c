package thunderbird

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeActionValue(t *testing.T) {
	tests := []struct {
		raw  string
		want ActionValue
	}{
		{
			raw: "imap://user@imap.example.com/Archived",
			want: ActionValue{Kind: FolderValue, Scheme: "imap", Username: "user",
				Server: "imap.example.com", Folder: "Archived"},
		},
		{
			raw: "imap://me%40example.com@mail.example.com/INBOX/My%20Folder",
			want: ActionValue{Kind: FolderValue, Scheme: "imap", Username: "me@example.com",
				Server: "mail.example.com", Folder: "INBOX/My Folder"},
		},
		{
			raw: "imap://user@imap.example.com/100%",
			want: ActionValue{Kind: FolderValue, Scheme: "imap", Username: "user",
				Server: "imap.example.com", Folder: "100%"},
		},
		{
			raw:  "someone@example.com",
			want: ActionValue{Kind: AddressValue, Address: "someone@example.com"},
		},
	}
	for _, tt := range tests {
		got, err := DecodeActionValue(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

func TestDecodeActionValueUnsupported(t *testing.T) {
	for _, raw := range []string{
		"",
		"Archived",
		"mailbox://nobody@Local%20Folders/Trash",
		"imap://user@imap.example.com",
		"imap://us er@imap.example.com/x",
		"a@b@c",
	} {
		_, err := DecodeActionValue(raw)
		assert.ErrorIs(t, err, ErrUnsupportedActionValue, raw)
	}
}

func TestActionValueAccount(t *testing.T) {
	v, err := DecodeActionValue("imap://me%40example.com@mail.example.com/INBOX")
	require.NoError(t, err)
	assert.Equal(t, "imap://me@example.com@mail.example.com", v.Account())
}
