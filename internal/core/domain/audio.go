package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// AudioExtension is the suffix of stored recordings.
const AudioExtension = ".webm"

// StoredObject is one entry of a bucket listing.
type StoredObject struct {
	Key          string
	LastModified time.Time
	Size         int64
}

// AudioEntry is a recording exposed by the audio browser.
type AudioEntry struct {
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	LastModified time.Time `json:"lastModified"`
	Size         int64     `json:"size"`
}

// AudioKey derives the object key for an upload made by email at t.
func AudioKey(prefix, email string, t time.Time) string {
	return prefix + EncodeURIComponent(email) + "/" + strconv.FormatInt(t.UnixMilli(), 10) + AudioExtension
}

// ObjectURL is the public virtual-hosted URL of a key. The bucket is private,
// so the URL only resolves for callers that hold credentials.
func ObjectURL(bucket, region, key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, EncodeURIComponent(key))
}

// BuildAudioEntries keeps recordings only and orders them newest first.
func BuildAudioEntries(objects []StoredObject, bucket, region string) []AudioEntry {
	entries := make([]AudioEntry, 0, len(objects))
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Key, AudioExtension) {
			continue
		}
		entries = append(entries, AudioEntry{
			Key:          obj.Key,
			Name:         obj.Key[strings.LastIndex(obj.Key, "/")+1:],
			URL:          ObjectURL(bucket, region, obj.Key),
			LastModified: obj.LastModified,
			Size:         obj.Size,
		})
	}
	slices.SortStableFunc(entries, func(a, b AudioEntry) int {
		return b.LastModified.Compare(a.LastModified)
	})
	return entries
}

// EncodeURIComponent escapes everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ).
// url.QueryEscape and url.PathEscape both disagree with this set.
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
