package argus

import "testing"

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		name   string
		errMsg string
		debug  string
		want   ErrorCategory
	}{
		{
			name:   "argus daemon down",
			errMsg: "Internal data stream error",
			debug:  "nvargus-daemon connection failed",
			want:   ErrCategorySensor,
		},
		{
			name:   "no cameras available",
			errMsg: "No cameras available",
			want:   ErrCategorySensor,
		},
		{
			name:   "capture timeout",
			errMsg: "Capture timeout on sensor 0",
			want:   ErrCategorySensor,
		},
		{
			name:   "csi receiver fault",
			errMsg: "CSI receiver reported stream fault",
			want:   ErrCategorySensor,
		},
		{
			name:   "caps not negotiated",
			errMsg: "Internal data stream error",
			debug:  "streaming stopped, reason not-negotiated (-4)",
			want:   ErrCategoryNegotiation,
		},
		{
			name:   "missing plugin",
			errMsg: "no such element factory \"nvvidconv\"",
			want:   ErrCategoryNegotiation,
		},
		{
			name:   "link failure",
			errMsg: "could not link source to converter",
			want:   ErrCategoryNegotiation,
		},
		{
			name:   "device busy",
			errMsg: "Device '/dev/video0' is busy",
			want:   ErrCategoryResource,
		},
		{
			name:   "permission denied",
			errMsg: "Permission denied opening device",
			want:   ErrCategoryResource,
		},
		{
			name:   "busy sensor classified as resource",
			errMsg: "sensor 0 resource busy",
			want:   ErrCategoryResource,
		},
		{
			name:   "unclassified",
			errMsg: "something went wrong",
			want:   ErrCategoryUnknown,
		},
		{
			name: "empty message",
			want: ErrCategoryUnknown,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyMessage(tc.errMsg, tc.debug)
			if got != tc.want {
				t.Errorf("classifyMessage(%q, %q) = %v, want %v", tc.errMsg, tc.debug, got, tc.want)
			}
		})
	}
}

func TestClassifyPipelineError_Nil(t *testing.T) {
	if got := ClassifyPipelineError(nil); got != ErrCategoryUnknown {
		t.Errorf("ClassifyPipelineError(nil) = %v, want %v", got, ErrCategoryUnknown)
	}
}

func TestErrorCategory_String(t *testing.T) {
	tests := []struct {
		cat  ErrorCategory
		want string
	}{
		{ErrCategorySensor, "sensor"},
		{ErrCategoryNegotiation, "negotiation"},
		{ErrCategoryResource, "resource"},
		{ErrCategoryUnknown, "unknown"},
		{ErrorCategory(99), "unknown"},
	}

	for _, tc := range tests {
		if got := tc.cat.String(); got != tc.want {
			t.Errorf("ErrorCategory(%d).String() = %q, want %q", tc.cat, got, tc.want)
		}
	}
}
