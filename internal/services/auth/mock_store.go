package auth

// MockStore is an in-memory auth store for testing.
type MockStore struct {
	tokens map[string]string
}

func NewMockStore() *MockStore {
	return &MockStore{tokens: make(map[string]string)}
}

func (m *MockStore) SetToken(service string, token string) error {
	m.tokens[service] = token
	return nil
}

func (m *MockStore) GetToken(service string) (string, error) {
	token, ok := m.tokens[service]
	if !ok {
		return "", ErrTokenNotFound
	}
	return token, nil
}

func (m *MockStore) DeleteToken(service string) error {
	if _, ok := m.tokens[service]; !ok {
		return ErrTokenNotFound
	}
	delete(m.tokens, service)
	return nil
}
