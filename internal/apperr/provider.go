package apperr

// 認証プロバイダのエラーコード
const (
	CodeEmailAlreadyExists = "auth/email-already-exists"
	CodeUserNotFound       = "auth/user-not-found"
	CodeWrongPassword      = "auth/wrong-password"
	CodeInvalidEmail       = "auth/invalid-email"
	CodeWeakPassword       = "auth/weak-password"
)

type providerMapping struct {
	kind    Kind
	message string
}

var providerCodes = map[string]providerMapping{
	CodeEmailAlreadyExists: {KindConflict, "An account with this email already exists"},
	CodeUserNotFound:       {KindNotFound, "No user found with this email"},
	CodeWrongPassword:      {KindUnauthenticated, "Invalid email or password"},
	CodeInvalidEmail:       {KindValidation, "The email address is invalid"},
	CodeWeakPassword:       {KindValidation, "The password is too weak"},
}

// FromProviderCode は認証プロバイダのエラーコードを分類済みエラーに変換します。
// 未知のコードは500になります。
func FromProviderCode(code string, cause error) *Error {
	if m, ok := providerCodes[code]; ok {
		return Wrap(m.kind, m.message, cause)
	}
	return Internal("An unexpected error occurred", cause)
}
