package user

type credentials struct {
	Login    string `json:"login" minLength:"3" maxLength:"64" doc:"Логин или email"`
	Password string `json:"password" minLength:"8" doc:"Пароль"`
}

type registerInput struct {
	Body credentials
}

type registerOutput struct {
	Body RegisterResponse
}

type RegisterResponse struct {
	ID    string `json:"user_id"`
	Token string `json:"token"`
}

type loginInput struct {
	Body credentials
}

type loginOutput struct {
	Body LoginResponse
}

type LoginResponse struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}
