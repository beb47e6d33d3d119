// Package strapi is the read-only transport to the Strapi content service.
//
// It issues GET requests under {base}{prefix}{endpoint}, attaches the bearer
// token when one is configured and never sends cookies. Responses are decoded
// once into an Envelope whose records are normalised from either the v4
// attributes wrapper or the v5 flattened layout. The client does not retry;
// classification and retries belong to the query cache.
package strapi
