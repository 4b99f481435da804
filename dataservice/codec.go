package dataservice

// IDCodec decouples the external ID representation from the adapter's
// native ID type. Every ID received from a caller is decoded before it
// reaches the adapter; every ID emitted in a response is encoded. Swap in
// an obfuscating codec without touching the pipeline.
type IDCodec interface {
	Encode(id any) any
	Decode(id any) any
}

// identityCodec passes IDs through unchanged in both directions.
type identityCodec struct{}

func (identityCodec) Encode(id any) any { return id }
func (identityCodec) Decode(id any) any { return id }

// IdentityCodec returns the default codec, which is the identity in both
// directions: Encode(Decode(x)) == x for every x.
func IdentityCodec() IDCodec {
	return identityCodec{}
}
