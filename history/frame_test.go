package history

import (
	"strings"
	"testing"
	"time"

	"github.com/SHINOYP/KYC/types"
)

func TestEncodeReport_RoundTrip(t *testing.T) {
	report := testReport("session-001", time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC))

	frame, err := EncodeReport(report)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(frame) <= LengthPrefixSize {
		t.Fatalf("frame too short: %d bytes", len(frame))
	}

	decoded, err := DecodeReport(frame[LengthPrefixSize:])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.SessionID != report.SessionID || decoded.Outcome != report.Outcome {
		t.Errorf("round trip mismatch: got %+v", decoded)
	}
}

func TestEncodeReport_TooLarge(t *testing.T) {
	report := &types.Report{
		SessionID: "session-001",
		Outcome:   types.OutcomeCompleted,
		Error:     strings.Repeat("x", MaxPayloadSize+1),
	}

	_, err := EncodeReport(report)
	fe, ok := err.(*FrameError)
	if !ok {
		t.Fatalf("expected *FrameError, got %v", err)
	}
	if fe.Kind != FrameErrorTooLarge {
		t.Errorf("kind = %d, want FrameErrorTooLarge", fe.Kind)
	}
}

func TestFrameErrorKinds_TruncationClassification(t *testing.T) {
	tests := []struct {
		name       string
		kind       FrameErrorKind
		truncation bool
	}{
		{"partial", FrameErrorPartial, true},
		{"too large", FrameErrorTooLarge, false},
		{"decode", FrameErrorDecode, false},
		{"encode", FrameErrorEncode, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := &FrameError{Kind: tt.kind, Msg: tt.name}
			if fe.IsTruncation() != tt.truncation {
				t.Errorf("IsTruncation() = %v, want %v", fe.IsTruncation(), tt.truncation)
			}
			if IsTruncatedFrame(fe) != tt.truncation {
				t.Errorf("IsTruncatedFrame() = %v, want %v", IsTruncatedFrame(fe), tt.truncation)
			}
		})
	}

	// Encode and decode failures must not be conflated.
	if FrameErrorEncode == FrameErrorDecode {
		t.Error("encode and decode kinds must be distinct")
	}
}
