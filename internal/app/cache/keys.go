package cache

// KeyPrefix - префикс типа ключа.
type KeyPrefix string

const PrefixLink KeyPrefix = "link" // link:shortCode

// KeyBuilder строит ключи вида [namespace:]prefix:part...
type KeyBuilder struct {
	namespace string
}

func NewKeyBuilder(namespace string) *KeyBuilder {
	return &KeyBuilder{namespace: namespace}
}

func (k *KeyBuilder) Build(prefix KeyPrefix, parts ...string) string {
	key := string(prefix)
	if k.namespace != "" {
		key = k.namespace + ":" + key
	}
	for _, part := range parts {
		key += ":" + part
	}
	return key
}

// Link возвращает ключ записи по короткому коду.
func (k *KeyBuilder) Link(shortCode string) string {
	return k.Build(PrefixLink, shortCode)
}
