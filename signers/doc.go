// Package signers provides convenience constructors for stellarkit.Signer.
//
// It offers three patterns:
//   - FromSecret: wraps a Stellar secret seed (S...) using stellar/go keypair.
//     Intended for server-side use (exchanges, backends, bots).
//   - Random: generates a fresh keypair, mostly useful for tests and for
//     funding new accounts.
//   - FromCallback: wraps a custom signing function (HSM, custodial API,
//     external service) behind a known public key.
package signers
