package provider

import "time"

// defaultHTTPTimeout bounds every outbound provider call. Model generations
// can take a minute or more on slow models.
const defaultHTTPTimeout = 120 * time.Second
