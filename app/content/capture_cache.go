package content

import "context"

// CaptureCache memoizes captures for the lifetime of one request. It is not
// safe for concurrent use and must not outlive the request that created it.
type CaptureCache struct {
	store Store
	meta  map[string]*Page
	body  map[string]*Page
}

func NewCaptureCache(store Store) *CaptureCache {
	return &CaptureCache{
		store: store,
		meta:  make(map[string]*Page),
		body:  make(map[string]*Page),
	}
}

func (c *CaptureCache) Exists(ctx context.Context, servletPath string) bool {
	return c.store.Exists(ctx, servletPath)
}

func (c *CaptureCache) CaptureMeta(ctx context.Context, ref PageRef) (*Page, error) {
	key := ref.String()
	if page, ok := c.meta[key]; ok {
		return page, nil
	}
	// A body capture is a superset of a meta capture.
	if page, ok := c.body[key]; ok {
		return page, nil
	}

	page, err := c.store.CaptureMeta(ctx, ref)
	if err != nil {
		return nil, err
	}
	c.meta[key] = page
	return page, nil
}

func (c *CaptureCache) CaptureBody(ctx context.Context, ref PageRef) (*Page, error) {
	key := ref.String()
	if page, ok := c.body[key]; ok {
		return page, nil
	}

	page, err := c.store.CaptureBody(ctx, ref)
	if err != nil {
		return nil, err
	}
	c.body[key] = page
	return page, nil
}
