package i18n

// Message keys shared by resolvers and the transport layer.
const (
	MsgUserNotFound           = "userNotFound"
	MsgPostNotFound           = "postNotFound"
	MsgCommentNotFound        = "commentNotFound"
	MsgInvalidUserID          = "invalidUserID"
	MsgInvalidPostID          = "invalidPostID"
	MsgInvalidCommentID       = "invalidCommentID"
	MsgInvalidOwnerID         = "invalidOwnerID"
	MsgInvalidPagination      = "invalidPagination"
	MsgInvalidArguments       = "invalidArguments"
	MsgMissingRequiredFields  = "missingRequiredFields"
	MsgValidationFailed       = "validationFailed"
	MsgInvalidEmailFormat     = "invalidEmailFormat"
	MsgEmailExists            = "emailExists"
	MsgIdempotencyKeyExists   = "idempotencyKeyExists"
	MsgFailedToFetchUsers     = "failedToFetchUsers"
	MsgFailedToFetchUser      = "failedToFetchUser"
	MsgFailedToFetchPosts     = "failedToFetchPosts"
	MsgFailedToFetchPost      = "failedToFetchPost"
	MsgFailedToFetchComments  = "failedToFetchComments"
	MsgFailedToFetchTags      = "failedToFetchTags"
	MsgFailedToSearchUsers    = "failedToSearchUsers"
	MsgFailedToSearchPosts    = "failedToSearchPosts"
	MsgFailedToCreateUser     = "failedToCreateUser"
	MsgFailedToUpdateUser     = "failedToUpdateUser"
	MsgFailedToDeleteUser     = "failedToDeleteUser"
	MsgFailedToCreatePost     = "failedToCreatePost"
	MsgFailedToUpdatePost     = "failedToUpdatePost"
	MsgFailedToDeletePost     = "failedToDeletePost"
	MsgFailedToCreateComment  = "failedToCreateComment"
	MsgFailedToDeleteComment  = "failedToDeleteComment"
	MsgFailedToFetchOwner     = "failedToFetchPostOwner"
	MsgFailedToFetchCommenter = "failedToFetchCommentOwner"
	MsgFailedToFetchParent    = "failedToFetchCommentPost"
	MsgLoginFailed            = "loginFailed"
	MsgOperationNotSupported  = "operationNotSupported"
	MsgInvalidRequest         = "invalidRequest"
	MsgInternalError          = "internalError"
)

// Table is the translation set of one locale. Message parameters use the
// universal-translator placeholder syntax: {0}, {1}, ...
type Table struct {
	Messages map[string]string
	Fields   map[string]string
	// Enums translates enumerated values; a missing entry leaves the value raw.
	Enums map[string]string
}

// Tables maps a locale to its table.
type Tables map[Locale]Table

// DefaultTables returns the built-in English and French tables.
func DefaultTables() Tables {
	return Tables{
		English: {
			Fields: map[string]string{
				"firstName":    "First Name",
				"lastName":     "Last Name",
				"email":        "Email",
				"phone":        "Phone",
				"gender":       "Gender",
				"dateOfBirth":  "Date of Birth",
				"text":         "Text",
				"likes":        "Likes",
				"tags":         "Tags",
				"publishDate":  "Publish Date",
				"message":      "Message",
				"owner":        "Owner",
				"post":         "Post",
				"password":     "Password",
				"title":        "Title",
				"street":       "Street",
				"city":         "City",
				"state":        "State",
				"country":      "Country",
				"link":         "Link",
				"image":        "Image",
				"picture":      "Picture",
				"registerDate": "Register Date",
			},
			Messages: map[string]string{
				MsgUserNotFound:           "User not found",
				MsgPostNotFound:           "Post not found",
				MsgCommentNotFound:        "Comment not found",
				MsgInvalidUserID:          "Invalid user ID format",
				MsgInvalidPostID:          "Invalid post ID format",
				MsgInvalidCommentID:       "Invalid comment ID format",
				MsgInvalidOwnerID:         "Invalid owner ID format",
				MsgInvalidPagination:      "Page must be at least 1 and limit between 1 and 2147483647",
				MsgInvalidArguments:       "Invalid arguments: {0}",
				MsgMissingRequiredFields:  "Missing required fields: {0}",
				MsgValidationFailed:       "Invalid input data",
				MsgInvalidEmailFormat:     "Invalid email format",
				MsgEmailExists:            "Email already exists",
				MsgIdempotencyKeyExists:   "Idempotency key already used",
				MsgFailedToFetchUsers:     "Failed to fetch users",
				MsgFailedToFetchUser:      "Failed to fetch user",
				MsgFailedToFetchPosts:     "Failed to fetch posts",
				MsgFailedToFetchPost:      "Failed to fetch post",
				MsgFailedToFetchComments:  "Failed to fetch comments",
				MsgFailedToFetchTags:      "Failed to fetch tags",
				MsgFailedToSearchUsers:    "Failed to search users",
				MsgFailedToSearchPosts:    "Failed to search posts",
				MsgFailedToCreateUser:     "Failed to create user",
				MsgFailedToUpdateUser:     "Failed to update user",
				MsgFailedToDeleteUser:     "Failed to delete user",
				MsgFailedToCreatePost:     "Failed to create post",
				MsgFailedToUpdatePost:     "Failed to update post",
				MsgFailedToDeletePost:     "Failed to delete post",
				MsgFailedToCreateComment:  "Failed to create comment",
				MsgFailedToDeleteComment:  "Failed to delete comment",
				MsgFailedToFetchOwner:     "Failed to fetch post owner",
				MsgFailedToFetchCommenter: "Failed to fetch comment owner",
				MsgFailedToFetchParent:    "Failed to fetch comment post",
				MsgLoginFailed:            "Login failed",
				MsgOperationNotSupported:  "Invalid operation or path",
				MsgInvalidRequest:         "Invalid request",
				MsgInternalError:          "Internal server error",
			},
		},
		French: {
			Fields: map[string]string{
				"firstName":    "Prénom",
				"lastName":     "Nom",
				"email":        "Courriel",
				"phone":        "Téléphone",
				"gender":       "Genre",
				"dateOfBirth":  "Date de naissance",
				"text":         "Texte",
				"likes":        "J'aimes",
				"tags":         "Mots-clés",
				"publishDate":  "Date de publication",
				"message":      "Message",
				"owner":        "Auteur",
				"post":         "Publication",
				"password":     "Mot de passe",
				"title":        "Civilité",
				"street":       "Rue",
				"city":         "Ville",
				"state":        "Région",
				"country":      "Pays",
				"link":         "Lien",
				"image":        "Image",
				"picture":      "Photo",
				"registerDate": "Date d'inscription",
			},
			Enums: map[string]string{
				"male":   "homme",
				"female": "femme",
			},
			Messages: map[string]string{
				MsgUserNotFound:           "Utilisateur non trouvé",
				MsgPostNotFound:           "Publication non trouvée",
				MsgCommentNotFound:        "Commentaire non trouvé",
				MsgInvalidUserID:          "Format d'ID utilisateur invalide",
				MsgInvalidPostID:          "Format d'ID de publication invalide",
				MsgInvalidCommentID:       "Format d'ID de commentaire invalide",
				MsgInvalidOwnerID:         "Format d'ID d'auteur invalide",
				MsgInvalidPagination:      "La page doit être au moins 1 et la limite comprise entre 1 et 2147483647",
				MsgInvalidArguments:       "Arguments invalides : {0}",
				MsgMissingRequiredFields:  "Champs obligatoires manquants: {0}",
				MsgValidationFailed:       "Données invalides",
				MsgInvalidEmailFormat:     "Format de courriel invalide",
				MsgEmailExists:            "Ce courriel existe déjà",
				MsgIdempotencyKeyExists:   "Clé d'idempotence déjà utilisée",
				MsgFailedToFetchUsers:     "Échec de la récupération des utilisateurs",
				MsgFailedToFetchUser:      "Échec de la récupération de l'utilisateur",
				MsgFailedToFetchPosts:     "Échec de la récupération des publications",
				MsgFailedToFetchPost:      "Échec de la récupération de la publication",
				MsgFailedToFetchComments:  "Échec de la récupération des commentaires",
				MsgFailedToFetchTags:      "Échec de la récupération des mots-clés",
				MsgFailedToSearchUsers:    "Échec de la recherche d'utilisateurs",
				MsgFailedToSearchPosts:    "Échec de la recherche de publications",
				MsgFailedToCreateUser:     "Échec de la création de l'utilisateur",
				MsgFailedToUpdateUser:     "Échec de la mise à jour de l'utilisateur",
				MsgFailedToDeleteUser:     "Échec de la suppression de l'utilisateur",
				MsgFailedToCreatePost:     "Échec de la création de la publication",
				MsgFailedToUpdatePost:     "Échec de la mise à jour de la publication",
				MsgFailedToDeletePost:     "Échec de la suppression de la publication",
				MsgFailedToCreateComment:  "Échec de la création du commentaire",
				MsgFailedToDeleteComment:  "Échec de la suppression du commentaire",
				MsgFailedToFetchOwner:     "Échec de la récupération de l'auteur de la publication",
				MsgFailedToFetchCommenter: "Échec de la récupération de l'auteur du commentaire",
				MsgFailedToFetchParent:    "Échec de la récupération de la publication du commentaire",
				MsgLoginFailed:            "Échec de la connexion",
				MsgOperationNotSupported:  "Opération ou chemin invalide",
				MsgInvalidRequest:         "Requête invalide",
				MsgInternalError:          "Erreur interne du serveur",
			},
		},
	}
}
