package composer

import (
	"context"
	"crypto/md5" // #nosec G501 -- md5 picks artwork deterministically, no security use
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// fallbackImageURL is a known-good photo served when the selected pool
// image fails its probe. It also sits in the pool at index 4.
const fallbackImageURL = "https://images.unsplash.com/photo-1640340434855-6084b1f4901c?w=1200&h=800&fit=crop"

// imagePool returns the candidate header images for a caption hash. Two
// entries embed the hash so consecutive digests rotate artwork.
func imagePool(captionHash string) []string {
	return []string{
		fmt.Sprintf("https://source.unsplash.com/1200x800/?cryptocurrency,trading,%s", captionHash),
		"https://source.unsplash.com/1200x800/?bitcoin,market,analysis",
		"https://source.unsplash.com/1200x800/?blockchain,finance,charts",
		fmt.Sprintf("https://picsum.photos/1200/800?random=%s", captionHash),
		fallbackImageURL,
		"https://images.unsplash.com/photo-1559757175-0eb30cd8c063?w=1200&h=800&fit=crop",
		"https://images.unsplash.com/photo-1616499370260-485b3e5ed653?w=1200&h=800&fit=crop",
	}
}

// selectImage deterministically picks a pool image from the caption text.
// The same caption always maps to the same image.
func selectImage(caption string) string {
	sum := md5.Sum([]byte(caption)) // #nosec G401 -- deterministic pool index, not security material
	captionHash := hex.EncodeToString(sum[:])[:8]

	hashNum, err := strconv.ParseUint(captionHash, 16, 64)
	if err != nil {
		return fallbackImageURL
	}

	pool := imagePool(captionHash)
	return pool[hashNum%uint64(len(pool))]
}

// probeImage verifies the selected image answers a HEAD request with 200
// before it is attached to a post. These hosts do not always support HEAD,
// so probe failures are routine and quietly swap in the fallback photo.
func (p *Perplexity) probeImage(ctx context.Context, imageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		p.metricsRecorder.RecordImageFallback()
		return fallbackImageURL
	}

	resp, err := p.probeClient.Do(req)
	if err != nil {
		slog.DebugContext(ctx, "Image probe failed, using fallback image",
			slog.String("image_url", imageURL),
			slog.Any("error", err))
		p.metricsRecorder.RecordImageFallback()
		return fallbackImageURL
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		slog.DebugContext(ctx, "Image probe returned non-200, using fallback image",
			slog.String("image_url", imageURL),
			slog.Int("status_code", resp.StatusCode))
		p.metricsRecorder.RecordImageFallback()
		return fallbackImageURL
	}

	return imageURL
}
