package receipts

import "testing"

func TestExtractFilenameFromGCSURI(t *testing.T) {
	s := NewService("bucket")

	tests := []struct {
		uri  string
		want string
	}{
		{"gs://bucket/folder/receipt.pdf", "receipt.pdf"},
		{"gs://bucket/receipt.pdf", "receipt.pdf"},
		{"gs://bucket/a/b/c/scan.png", "scan.png"},
		{"gs://bucket-only", "bucket-only"},
	}

	for _, tt := range tests {
		if got := s.ExtractFilenameFromGCSURI(tt.uri); got != tt.want {
			t.Errorf("ExtractFilenameFromGCSURI(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestSplitGCSURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"valid", "gs://my-bucket/path/to/file.pdf", "my-bucket", "path/to/file.pdf", false},
		{"no scheme", "my-bucket/file.pdf", "", "", true},
		{"no object", "gs://my-bucket", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := splitGCSURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("splitGCSURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("splitGCSURI(%q) = (%q, %q), want (%q, %q)", tt.uri, bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}
