package config

// ElasticsearchConfig содержит настройки подключения к Elasticsearch
type ElasticsearchConfig struct {
	Enabled    bool
	URL        string
	Username   string
	Password   string
	Index      string
	MaxRetries int
}

func loadElasticsearchConfig() ElasticsearchConfig {
	return ElasticsearchConfig{
		Enabled:    getEnv("ELASTICSEARCH_ENABLED", "false") == "true",
		URL:        getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
		Username:   getEnv("ELASTICSEARCH_USERNAME", ""),
		Password:   getEnv("ELASTICSEARCH_PASSWORD", ""),
		Index:      getEnv("ELASTICSEARCH_INDEX", "citypulse-events"),
		MaxRetries: getEnvInt("ELASTICSEARCH_MAX_RETRIES", 3),
	}
}
