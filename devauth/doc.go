// Package devauth is a development authentication service for the seven
// built-in test accounts. Each account's password equals its username.
//
// It serves POST /api/login:
//
//	request:  {"username":"admin","password":"admin"}
//	200:      {"user":{"username","name","email","role"},"token":"<jwt>"}
//	401:      {"message":"Invalid credentials"}
//	429:      {"message":"Too many attempts"}
//
// Passwords are stored as argon2id PHC strings. Tokens are HS256 JWTs whose
// subject is the username and whose "role" claim is the user's role.
//
// # What this package must NOT do
//
//   - Run in production. The accounts and their passwords are public.
package devauth
