package components

import "github.com/pthm/ccpricing/hx"

// C holds all component instances.
var C struct {
	Page       *Page
	Header     *Header
	Estimation *Estimation
	Product    *Product
	Storage    *Storage
}

// Init creates the pricing components and registers them. Call it once at
// startup, before handling requests.
func Init(sessions Sessions, links Links, reg *hx.Registry) {
	C.Header = NewHeader(sessions)
	C.Estimation = NewEstimation(sessions, links)
	C.Storage = NewStorage(sessions)
	C.Product = NewProduct(sessions, C.Storage)
	C.Page = NewPage(sessions, C.Header, C.Estimation, C.Product)

	reg.Add(C.Page, C.Header, C.Estimation, C.Product, C.Storage)
}
