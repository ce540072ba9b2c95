package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChangeLine(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{
			name: "uid change on a file",
			ev: Event{
				Type: UIDChange, Kind: File, Path: "/data/f",
				Old: 1000, New: 2000, OldName: "alice", NewName: "bob",
			},
			want: "/data/f (FILE): 1000 (alice), uid will be changed to 2000 (bob)",
		},
		{
			name: "gid change on a symlink",
			ev: Event{
				Type: GIDChange, Kind: Symlink, Path: "/data/l",
				Old: 100, New: 200, OldName: "users", NewName: "staff",
			},
			want: "/data/l (SYMLINK): 100 (users), gid will be changed to 200 (staff)",
		},
		{
			name: "uid change on a directory",
			ev: Event{
				Type: UIDChange, Kind: Directory, Path: "/data/d",
				Old: 1, New: 2, OldName: "1", NewName: "2",
			},
			want: "/data/d (DIRECTORY): 1 (1), uid will be changed to 2 (2)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ev.ChangeLine())
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "FILE", File.String())
	assert.Equal(t, "DIRECTORY", Directory.String())
	assert.Equal(t, "SYMLINK", Symlink.String())
	assert.Equal(t, "UNKNOWN", Kind(99).String())
}
