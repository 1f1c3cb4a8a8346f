// Package google obtains and persists the OAuth2 credential used for Google
// APIs.
//
// A Credential lives in a CredentialStore (a JSON file by default, or a Redis
// key). The Authenticator turns a stored credential into a valid one by
// reusing it, refreshing it with the provider's token endpoint, or running an
// interactive grant through a Granter:
//
//	NoCredential -> Loaded -> Valid | Expired | Invalid
//	Expired (with refresh token) -> Refreshing -> Valid | NeedsGrant
//	NoCredential | Invalid | NeedsGrant -> Granting -> Valid | Failed
//
// Valid is the only successful outcome. Progress, success and error
// notifications are reported through an events.Emitter at every transition.
package google
