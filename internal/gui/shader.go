package gui

// Lit, normal mapped and fogged. Attribute and matrix names follow raylib's
// defaults so LoadShaderFromMemory binds them; the normal map sits in
// texture2 (MapNormal).
const vertexShader = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
in vec4 vertexTangent;

uniform mat4 mvp;
uniform mat4 matModel;
uniform mat4 matNormal;
uniform vec2 tiling;

out vec3 fragPosition;
out vec2 fragTexCoord;
out mat3 fragTBN;

void main() {
    fragPosition = vec3(matModel*vec4(vertexPosition, 1.0));
    fragTexCoord = vertexTexCoord*tiling;
    vec3 n = normalize(vec3(matNormal*vec4(vertexNormal, 0.0)));
    vec3 t = vec3(matModel*vec4(vertexTangent.xyz, 0.0));
    t = normalize(t - dot(t, n)*n + vec3(1e-6));
    fragTBN = mat3(t, cross(n, t)*vertexTangent.w, n);
    gl_Position = mvp*vec4(vertexPosition, 1.0);
}
`

const fragmentShader = `#version 330
in vec3 fragPosition;
in vec2 fragTexCoord;
in mat3 fragTBN;

uniform sampler2D texture2;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightPos;
uniform float ambient;
uniform float intensity;
uniform float useNormalMap;
uniform vec3 fogColor;
uniform float fogNear;
uniform float fogFar;

out vec4 finalColor;

void main() {
    vec3 n = normalize(fragTBN[2]);
    if (useNormalMap > 0.5) {
        n = normalize(fragTBN*(texture(texture2, fragTexCoord).rgb*2.0 - 1.0));
    }
    vec3 l = normalize(lightPos - fragPosition);
    vec3 v = normalize(viewPos - fragPosition);
    float diff = max(dot(n, l), 0.0);
    float spec = pow(max(dot(n, normalize(l + v)), 0.0), 32.0)*0.25;
    vec3 lit = colDiffuse.rgb*(ambient + intensity*diff) + vec3(spec*intensity);

    float fog = clamp((length(viewPos - fragPosition) - fogNear)/max(fogFar - fogNear, 1e-3), 0.0, 1.0);
    finalColor = vec4(mix(lit, fogColor, fog), colDiffuse.a);
}
`
