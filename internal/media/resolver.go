package media

import (
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"
)

// Product images live in a GCS bucket keyed by SKU: full-size images at
// <sku>.jpg, thumbnails at thumbnails/<sku>.jpg.

// Resolver maps product SKUs to browsable image URLs
type Resolver interface {
	ImageURL(sku string) string
	ThumbnailURL(sku string) string
}

// HasObject reports whether a SKU maps to a real object name. Records carry
// "N/A" when the SKU is unknown; those use the catalog-wide fallback image.
func HasObject(sku string) bool {
	return sku != "" && sku != "N/A"
}

// publicResolver builds public storage.googleapis.com URLs
type publicResolver struct {
	bucket string
}

// NewPublicResolver returns a resolver building public object URLs for the
// given bucket
func NewPublicResolver(bucket string) Resolver {
	return &publicResolver{bucket: bucket}
}

func (r *publicResolver) ImageURL(sku string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s.jpg", r.bucket, sku)
}

func (r *publicResolver) ThumbnailURL(sku string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/thumbnails/%s.jpg", r.bucket, sku)
}

// URLSigner signs object URLs. *storage.BucketHandle satisfies it.
type URLSigner interface {
	SignedURL(object string, opts *storage.SignedURLOptions) (string, error)
}

// signedResolver builds V4-signed GET URLs for private buckets. Signing
// failures fall back to the public URL so a misconfigured service account
// degrades to public-bucket behavior instead of breaking the catalog.
type signedResolver struct {
	signer URLSigner
	ttl    time.Duration
	public Resolver
	logger *slog.Logger
}

// NewSignedResolver returns a resolver producing V4-signed GET URLs with the
// given lifetime
func NewSignedResolver(signer URLSigner, bucket string, ttl time.Duration, logger *slog.Logger) Resolver {
	return &signedResolver{
		signer: signer,
		ttl:    ttl,
		public: NewPublicResolver(bucket),
		logger: logger,
	}
}

func (r *signedResolver) ImageURL(sku string) string {
	return r.sign(sku+".jpg", r.public.ImageURL(sku))
}

func (r *signedResolver) ThumbnailURL(sku string) string {
	return r.sign("thumbnails/"+sku+".jpg", r.public.ThumbnailURL(sku))
}

func (r *signedResolver) sign(object, fallback string) string {
	url, err := r.signer.SignedURL(object, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(r.ttl),
	})
	if err != nil {
		r.logger.Warn("failed to sign object URL, serving public URL", "object", object, "error", err)
		return fallback
	}
	return url
}
