package transfer

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestClassify(t *testing.T) {
	watchedAddr := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	otherAddr := common.HexToAddress("0x1111111111111111111111111111111111111111")
	watched := NewWatchedSet([]string{watchedAddr.Hex()})

	tests := []struct {
		name      string
		from, to  common.Address
		want      Direction
		wantMatch bool
	}{
		{"into watched", otherAddr, watchedAddr, DirectionIn, true},
		{"out of watched", watchedAddr, otherAddr, DirectionOut, true},
		{"between watched classifies as IN", watchedAddr, watchedAddr, DirectionIn, true},
		{"unrelated", otherAddr, otherAddr, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, match := Classify(&Decoded{From: tt.from, To: tt.to}, watched)
			if match != tt.wantMatch {
				t.Fatalf("Expected match=%v, got %v", tt.wantMatch, match)
			}
			if got != tt.want {
				t.Errorf("Expected direction %q, got %q", tt.want, got)
			}
		})
	}
}

func TestWatchedSet_CaseInsensitive(t *testing.T) {
	watched := NewWatchedSet([]string{"0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"})

	if !watched.Contains(common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")) {
		t.Error("Expected membership to be case-insensitive")
	}
}
