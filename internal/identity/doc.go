// Package identity implements account registration and password login.
//
// Passwords are hashed with bcrypt. Login performs a dummy bcrypt
// comparison when the email is unknown so response timing does not
// reveal which addresses are registered. Successful registration and
// login both issue a JWT via the auth package.
package identity
