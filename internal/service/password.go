package service

import "golang.org/x/crypto/bcrypt"

// HashPassword genera un hash bcrypt con salt aleatorio. Dos llamadas con la
// misma contraseña producen hashes distintos.
func HashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// CheckPassword verifica una contraseña contra su hash almacenado.
// Devuelve false ante cualquier discrepancia, incluido un hash malformado.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
