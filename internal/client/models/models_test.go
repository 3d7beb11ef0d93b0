package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSettlementStatus(t *testing.T) {
	cases := map[string]SettlementStatus{
		"success":    SettlementSuccess,
		" Completed": SettlementSuccess,
		"pending":    SettlementPending,
		"PROCESSING": SettlementPending,
		"failed":     SettlementFailed,
		"cancelled":  SettlementFailed,
		"":           SettlementUnknown,
		"weird":      SettlementUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseSettlementStatus(in), "input %q", in)
	}
}

func TestFileSummary_Kind(t *testing.T) {
	cases := map[string]FileKind{
		"image/png":                    FileKindImage,
		"video/mp4":                    FileKindVideo,
		"audio/mpeg":                   FileKindAudio,
		"application/zip":              FileKindArchive,
		"application/x-7z-compressed":  FileKindArchive,
		"application/pdf":              FileKindDocument,
		"":                             FileKindDocument,
	}
	for mime, want := range cases {
		assert.Equal(t, want, FileSummary{FileType: mime}.Kind(), "mime %q", mime)
	}
}

func TestUser_Name(t *testing.T) {
	var nilUser *User
	assert.Equal(t, "", nilUser.Name())
	assert.Equal(t, "Awa", (&User{DisplayName: "Awa", Username: "awa99"}).Name())
	assert.Equal(t, "awa99", (&User{Username: "awa99", Email: "a@b.c"}).Name())
	assert.Equal(t, "a@b.c", (&User{Email: "a@b.c"}).Name())
}

func TestUserUpdate_Empty(t *testing.T) {
	assert.True(t, UserUpdate{}.Empty())
	city := "Ouagadougou"
	assert.False(t, UserUpdate{City: &city}.Empty())
}
